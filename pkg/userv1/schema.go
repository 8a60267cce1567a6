// Package userv1 defines the user.v1 API schema.  The file descriptor is
// assembled at init from descriptorpb, carries its protovalidate rules as
// options, and is registered with the global registries so that reflection,
// Any resolution and protojson work as they would for generated code.
// Messages are instantiated with dynamicpb.
package userv1

import (
	"fmt"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	FilePath    = "user/v1/user.proto"
	Package     = "user.v1"
	ServiceName = "user.v1.UserService"

	// CreateUserProcedure is the full gRPC method name of UserService.CreateUser.
	CreateUserProcedure = "/user.v1.UserService/CreateUser"

	// PasswordMismatchRuleID identifies the message-level rule comparing the
	// password with its confirmation.
	PasswordMismatchRuleID  = "password_mismatch"
	PasswordMismatchMessage = "passwords must match"
)

// Field length bounds enforced by the CreateUserRequest rules.
const (
	NameMaxLen     = 255
	EmailMaxLen    = 255
	PasswordMinLen = 8
	PasswordMaxLen = 72
)

var (
	// File is the user.v1 file descriptor.
	File protoreflect.FileDescriptor

	createUserRequest  protoreflect.MessageDescriptor
	createUserResponse protoreflect.MessageDescriptor
	user               protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Errorf("error building %s: %w", FilePath, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Errorf("error registering %s: %w", FilePath, err))
	}

	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		if err := protoregistry.GlobalTypes.RegisterMessage(dynamicpb.NewMessageType(msgs.Get(i))); err != nil {
			panic(fmt.Errorf("error registering %s: %w", msgs.Get(i).FullName(), err))
		}
	}

	File = fd
	createUserRequest = msgs.ByName("CreateUserRequest")
	createUserResponse = msgs.ByName("CreateUserResponse")
	user = msgs.ByName("User")
}

// CreateUserRequestDescriptor returns the user.v1.CreateUserRequest descriptor.
func CreateUserRequestDescriptor() protoreflect.MessageDescriptor {
	return createUserRequest
}

// CreateUserResponseDescriptor returns the user.v1.CreateUserResponse descriptor.
func CreateUserResponseDescriptor() protoreflect.MessageDescriptor {
	return createUserResponse
}

// UserDescriptor returns the user.v1.User descriptor.
func UserDescriptor() protoreflect.MessageDescriptor {
	return user
}

// Service returns the user.v1.UserService descriptor.
func Service() protoreflect.ServiceDescriptor {
	return File.Services().ByName("UserService")
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FilePath),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"buf/validate/validate.proto",
			"google/protobuf/timestamp.proto",
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("User"),
				Field: []*descriptorpb.FieldDescriptorProto{
					stringField("id", 1, nil),
					stringField("name", 2, nil),
					stringField("email", 3, nil),
					messageField("created_at", 4, ".google.protobuf.Timestamp"),
					messageField("updated_at", 5, ".google.protobuf.Timestamp"),
				},
			},
			{
				Name:    proto.String("CreateUserRequest"),
				Options: createUserRequestRules(),
				Field: []*descriptorpb.FieldDescriptorProto{
					stringField("name", 1, &validate.StringRules{
						MinLen: proto.Uint64(1),
						MaxLen: proto.Uint64(NameMaxLen),
					}),
					stringField("email", 2, &validate.StringRules{
						MaxLen:    proto.Uint64(EmailMaxLen),
						WellKnown: &validate.StringRules_Email{Email: true},
					}),
					stringField("password", 3, &validate.StringRules{
						MinLen: proto.Uint64(PasswordMinLen),
						MaxLen: proto.Uint64(PasswordMaxLen),
					}),
					stringField("password_confirmation", 4, &validate.StringRules{
						MinLen: proto.Uint64(PasswordMinLen),
						MaxLen: proto.Uint64(PasswordMaxLen),
					}),
				},
			},
			{
				Name: proto.String("CreateUserResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("user", 1, ".user.v1.User"),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("UserService"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("CreateUser"),
						InputType:  proto.String(".user.v1.CreateUserRequest"),
						OutputType: proto.String(".user.v1.CreateUserResponse"),
					},
				},
			},
		},
	}
}

func createUserRequestRules() *descriptorpb.MessageOptions {
	opts := &descriptorpb.MessageOptions{}
	proto.SetExtension(opts, validate.E_Message, &validate.MessageRules{
		Cel: []*validate.Rule{
			{
				Id:         proto.String(PasswordMismatchRuleID),
				Message:    proto.String(PasswordMismatchMessage),
				Expression: proto.String("this.password == this.password_confirmation"),
			},
		},
	})
	return opts
}

func stringField(name string, number int32, rules *validate.StringRules) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
	}
	if rules != nil {
		f.Options = &descriptorpb.FieldOptions{}
		proto.SetExtension(f.Options, validate.E_Field, &validate.FieldRules{
			Type: &validate.FieldRules_String_{String_: rules},
		})
	}
	return f
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName: proto.String(typeName),
	}
}
