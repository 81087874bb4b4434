package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire kinds: client → server.
const (
	KindLoginJWT         = "LoginJWT"
	KindMessage          = "Message"
	KindPrivateMessage   = "PrivateMessage"
	KindRequestJWT       = "RequestJWT"
	KindRequestUserCount = "RequestUserCount"
	KindBanUser          = "BanUser"
	KindUnbanUser        = "UnbanUser"
)

// Wire kinds: server → client. Message and PrivateMessage are shared with
// the outbound direction.
const (
	KindError     = "Error"
	KindNewJWT    = "NewJWT"
	KindSuccess   = "Success"
	KindUserCount = "UserCount"
)

// Class identifies the typed dispatch target of an inbound envelope.
type Class int

const (
	ClassUnrecognized Class = iota
	ClassError
	ClassMessage
	ClassPrivateMessage
	ClassNewJWT
	ClassSuccess
	ClassUserCount
)

// Classify maps an envelope to its dispatch target. Unrecognized kinds are
// not an error: future server-added packets must not break older clients.
func Classify(env Envelope) Class {
	switch env.Kind {
	case KindError:
		return ClassError
	case KindMessage:
		return ClassMessage
	case KindPrivateMessage:
		return ClassPrivateMessage
	case KindNewJWT:
		return ClassNewJWT
	case KindSuccess:
		return ClassSuccess
	case KindUserCount:
		return ClassUserCount
	default:
		return ClassUnrecognized
	}
}

// ErrKindMismatch reports a typed accessor called on an envelope of the
// wrong kind.
var ErrKindMismatch = errors.New("protocol: envelope kind mismatch")

// ErrorReason is the closed set of error conditions the server reports.
type ErrorReason string

const (
	ErrorNotSupported              ErrorReason = "NotSupported"
	ErrorLoginFailed               ErrorReason = "LoginFailed"
	ErrorNotLoggedIn               ErrorReason = "NotLoggedIn"
	ErrorAlreadyLoggedIn           ErrorReason = "AlreadyLoggedIn"
	ErrorNotPermitted              ErrorReason = "NotPermitted"
	ErrorNotBanned                 ErrorReason = "NotBanned"
	ErrorBanned                    ErrorReason = "Banned"
	ErrorRateLimited               ErrorReason = "RateLimited"
	ErrorPrivateMessageNotAccepted ErrorReason = "PrivateMessageNotAccepted"
	ErrorEmptyMessage              ErrorReason = "EmptyMessage"
	ErrorMessageTooLong            ErrorReason = "MessageTooLong"
	ErrorInvalidCharacter          ErrorReason = "InvalidCharacter"
	ErrorInvalidID                 ErrorReason = "InvalidId"
	ErrorInternal                  ErrorReason = "Internal"
)

// SuccessReason is the closed set of operations the server acknowledges.
type SuccessReason string

const (
	SuccessLogin SuccessReason = "Login"
	SuccessBan   SuccessReason = "Ban"
	SuccessUnban SuccessReason = "Unban"
)

// AuthorInfo identifies the sender of a chat message.
type AuthorInfo struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// ChatMessage is the typed payload of Message and PrivateMessage events.
type ChatMessage struct {
	Author  AuthorInfo `json:"author_info"`
	Content string     `json:"content"`
}

// UserCount reports how many clients are connected and how many of those
// are logged in.
type UserCount struct {
	Connections int `json:"connections"`
	LoggedIn    int `json:"logged_in"`
}

// Outbound payload shapes. Field names are wire-form; Encode performs no
// further renaming.
type (
	// LoginJWT authenticates with a token previously issued via RequestJWT.
	LoginJWT struct {
		Token         string `json:"token"`
		AllowMessages bool   `json:"allow_messages"`
	}

	// OutgoingMessage is a public chat message.
	OutgoingMessage struct {
		Content string `json:"content"`
	}

	// OutgoingPrivateMessage is a whisper to a named receiver.
	OutgoingPrivateMessage struct {
		Message  string `json:"message"`
		Receiver string `json:"receiver"`
	}

	// UserAction targets a user by UUID for BanUser and UnbanUser.
	UserAction struct {
		User string `json:"user"`
	}
)

// ChatMessage translates a Message or PrivateMessage payload.
func (e Envelope) ChatMessage() (ChatMessage, error) {
	if e.Kind != KindMessage && e.Kind != KindPrivateMessage {
		return ChatMessage{}, fmt.Errorf("%w: got %s", ErrKindMismatch, e.Kind)
	}
	var msg ChatMessage
	if err := e.payload(&msg); err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

// ErrorReason translates an Error payload.
func (e Envelope) ErrorReason() (ErrorReason, error) {
	if e.Kind != KindError {
		return "", fmt.Errorf("%w: got %s", ErrKindMismatch, e.Kind)
	}
	var body struct {
		Message ErrorReason `json:"message"`
	}
	if err := e.payload(&body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// SuccessReason translates a Success payload.
func (e Envelope) SuccessReason() (SuccessReason, error) {
	if e.Kind != KindSuccess {
		return "", fmt.Errorf("%w: got %s", ErrKindMismatch, e.Kind)
	}
	var body struct {
		Reason SuccessReason `json:"reason"`
	}
	if err := e.payload(&body); err != nil {
		return "", err
	}
	return body.Reason, nil
}

// Token translates a NewJWT payload.
func (e Envelope) Token() (string, error) {
	if e.Kind != KindNewJWT {
		return "", fmt.Errorf("%w: got %s", ErrKindMismatch, e.Kind)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := e.payload(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}

// UserCount translates a UserCount payload.
func (e Envelope) UserCount() (UserCount, error) {
	if e.Kind != KindUserCount {
		return UserCount{}, fmt.Errorf("%w: got %s", ErrKindMismatch, e.Kind)
	}
	var count UserCount
	if err := e.payload(&count); err != nil {
		return UserCount{}, err
	}
	return count, nil
}

func (e Envelope) payload(v any) error {
	data := e.Payload
	if data == nil {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	return nil
}
