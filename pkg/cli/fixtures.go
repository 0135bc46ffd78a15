package cli

import (
	"strings"

	"github.com/getmockd/mockconnector/pkg/config"
	"github.com/getmockd/mockconnector/pkg/connector"
)

// loadFixtures loads every argument in order. Arguments containing glob
// metacharacters are expanded with doublestar; anything else is a path.
func loadFixtures(args []string) ([]*config.File, error) {
	if len(args) == 0 {
		return nil, ErrNoFixtures
	}
	var files []*config.File
	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[{") {
			matched, err := config.LoadGlob(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, matched...)
			continue
		}
		f, err := config.LoadFile(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// newConnector registers the cases of files on a fresh builder configured
// from the persistent flags and builds it.
func (a *app) newConnector(files []*config.File, opts ...connector.Option) (*connector.Connector, error) {
	level, err := connector.ParseLevel(a.reportLevel)
	if err != nil {
		return nil, err
	}
	opts = append([]connector.Option{
		connector.WithLogger(a.logger),
		connector.WithLevel(level),
	}, opts...)

	b := connector.NewBuilder(opts...)
	if err := config.Apply(b, files...); err != nil {
		return nil, err
	}
	return b.Build()
}

// loadConnector loads the fixtures named by args and builds a connector
// from them.
func (a *app) loadConnector(args []string, opts ...connector.Option) (*connector.Connector, []*config.File, error) {
	files, err := loadFixtures(args)
	if err != nil {
		return nil, nil, err
	}
	conn, err := a.newConnector(files, opts...)
	if err != nil {
		return nil, files, err
	}
	return conn, files, nil
}
