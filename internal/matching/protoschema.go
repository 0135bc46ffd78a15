package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// CompileProtoMessage compiles a .proto source file and returns the
// descriptor of one of its messages. file is resolved against importPaths;
// well-known imports such as google/protobuf/timestamp.proto are built in.
// message may be fully qualified or relative to the file's package.
func CompileProtoMessage(ctx context.Context, file string, importPaths []string, message string) (protoreflect.MessageDescriptor, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: importPaths,
		}),
	}
	compiled, err := compiler.Compile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", file, err)
	}
	if len(compiled) == 0 {
		return nil, fmt.Errorf("compiling %s: no file produced", file)
	}

	fd := compiled[0]
	name := strings.TrimPrefix(message, ".")
	if pkg := string(fd.Package()); pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	md := findMessage(fd.Messages(), strings.Split(name, "."))
	if md == nil {
		return nil, fmt.Errorf("message %q not found in %s", message, file)
	}
	return md, nil
}

func findMessage(msgs protoreflect.MessageDescriptors, path []string) protoreflect.MessageDescriptor {
	md := msgs.ByName(protoreflect.Name(path[0]))
	if md == nil || len(path) == 1 {
		return md
	}
	return findMessage(md.Messages(), path[1:])
}

// NewProtoMessage builds a dynamic message of type md from its protojson
// encoding. Empty data yields the zero message.
func NewProtoMessage(md protoreflect.MessageDescriptor, data []byte) (proto.Message, error) {
	msg := dynamicpb.NewMessage(md)
	if len(data) == 0 {
		return msg, nil
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", md.FullName(), err)
	}
	return msg, nil
}
