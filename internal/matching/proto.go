package matching

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

// DecodeProto unmarshals body into a new message of the same type as
// template.
func DecodeProto(template proto.Message, body []byte) (proto.Message, error) {
	msg := template.ProtoReflect().New().Interface()
	if err := proto.Unmarshal(body, msg); err != nil {
		return nil, fmt.Errorf("invalid %s message: %w", template.ProtoReflect().Descriptor().FullName(), err)
	}
	return msg, nil
}

// EqualProto reports whether two messages are equal.
func EqualProto(expected, actual proto.Message) bool {
	return proto.Equal(expected, actual)
}

// FormatProto renders a message in multi-line text format.
func FormatProto(msg proto.Message) string {
	text := prototext.MarshalOptions{Multiline: true, Indent: "  "}.Format(msg)
	text = strings.TrimSpace(text)
	if text == "" {
		return string(msg.ProtoReflect().Descriptor().FullName()) + " {}"
	}
	return text
}
