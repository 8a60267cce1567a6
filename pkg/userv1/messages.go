package userv1

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// CreateUserRequest holds the fields of a user.v1.CreateUserRequest.
type CreateUserRequest struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Message builds the wire message for r.
func (r CreateUserRequest) Message() *dynamicpb.Message {
	m := dynamicpb.NewMessage(createUserRequest)
	setString(m, "name", r.Name)
	setString(m, "email", r.Email)
	setString(m, "password", r.Password)
	setString(m, "password_confirmation", r.PasswordConfirmation)
	return m
}

// CreateUserRequestFrom reads a user.v1.CreateUserRequest message.
func CreateUserRequestFrom(msg proto.Message) (CreateUserRequest, error) {
	m, err := expect(msg, createUserRequest)
	if err != nil {
		return CreateUserRequest{}, err
	}
	return CreateUserRequest{
		Name:                 getString(m, "name"),
		Email:                getString(m, "email"),
		Password:             getString(m, "password"),
		PasswordConfirmation: getString(m, "password_confirmation"),
	}, nil
}

// User holds the fields of a user.v1.User.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message builds the wire message for u.
func (u User) Message() *dynamicpb.Message {
	m := dynamicpb.NewMessage(user)
	setString(m, "id", u.ID)
	setString(m, "name", u.Name)
	setString(m, "email", u.Email)
	setTime(m, "created_at", u.CreatedAt)
	setTime(m, "updated_at", u.UpdatedAt)
	return m
}

// UserFrom reads a user.v1.User message.
func UserFrom(msg proto.Message) (User, error) {
	m, err := expect(msg, user)
	if err != nil {
		return User{}, err
	}
	return userFrom(m), nil
}

// NewCreateUserResponse wraps u in a user.v1.CreateUserResponse.
func NewCreateUserResponse(u User) *dynamicpb.Message {
	m := dynamicpb.NewMessage(createUserResponse)
	m.Set(createUserResponse.Fields().ByName("user"), protoreflect.ValueOfMessage(u.Message()))
	return m
}

// NewCreateUserResponseMessage returns an empty response to decode into.
func NewCreateUserResponseMessage() *dynamicpb.Message {
	return dynamicpb.NewMessage(createUserResponse)
}

// UserFromResponse reads the user out of a user.v1.CreateUserResponse.
func UserFromResponse(msg proto.Message) (User, error) {
	m, err := expect(msg, createUserResponse)
	if err != nil {
		return User{}, err
	}
	fd := createUserResponse.Fields().ByName("user")
	if !m.Has(fd) {
		return User{}, fmt.Errorf("%s has no user", createUserResponse.FullName())
	}
	return userFrom(m.Get(fd).Message()), nil
}

func userFrom(m protoreflect.Message) User {
	return User{
		ID:        getString(m, "id"),
		Name:      getString(m, "name"),
		Email:     getString(m, "email"),
		CreatedAt: getTime(m, "created_at"),
		UpdatedAt: getTime(m, "updated_at"),
	}
}

func expect(msg proto.Message, desc protoreflect.MessageDescriptor) (protoreflect.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("expected %s, got nil", desc.FullName())
	}
	m := msg.ProtoReflect()
	if got := m.Descriptor().FullName(); got != desc.FullName() {
		return nil, fmt.Errorf("expected %s, got %s", desc.FullName(), got)
	}
	return m, nil
}

func setString(m protoreflect.Message, name, v string) {
	m.Set(m.Descriptor().Fields().ByName(protoreflect.Name(name)), protoreflect.ValueOfString(v))
}

func getString(m protoreflect.Message, name string) string {
	return m.Get(m.Descriptor().Fields().ByName(protoreflect.Name(name))).String()
}

func setTime(m protoreflect.Message, name string, t time.Time) {
	if t.IsZero() {
		return
	}
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	m.Set(fd, protoreflect.ValueOfMessage(timestamppb.New(t).ProtoReflect()))
}

// getTime reads a google.protobuf.Timestamp field by its field names so that
// it works for both generated and dynamic nested messages.
func getTime(m protoreflect.Message, name string) time.Time {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if !m.Has(fd) {
		return time.Time{}
	}
	ts := m.Get(fd).Message()
	fields := ts.Descriptor().Fields()
	return time.Unix(
		ts.Get(fields.ByName("seconds")).Int(),
		ts.Get(fields.ByName("nanos")).Int(),
	).UTC()
}
