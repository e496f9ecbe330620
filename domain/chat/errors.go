package chat

import "errors"

var (
	// ErrRoomAlreadyExists indicates a room with the same name is already open.
	ErrRoomAlreadyExists = errors.New("room already exists")
	// ErrRoomNotFound indicates the requested room is not in the directory.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotRoomCreator indicates the caller did not create the room.
	ErrNotRoomCreator = errors.New("only the room creator can close the room")
	// ErrNoCurrentRoom indicates the connection is not in any room.
	ErrNoCurrentRoom = errors.New("connection is not in any room")
	// ErrRoomNameEmpty indicates a room name was not provided.
	ErrRoomNameEmpty = errors.New("room name cannot be empty")
	// ErrRoomNameTooLong indicates the room name exceeds MaxRoomNameLength.
	ErrRoomNameTooLong = errors.New("room name exceeds maximum length")
	// ErrRoomNameInvalid indicates the room name is not valid UTF-8.
	ErrRoomNameInvalid = errors.New("room name contains invalid characters")
	// ErrMessageEmpty indicates empty message content.
	ErrMessageEmpty = errors.New("message content cannot be empty")
	// ErrMessageTooLong indicates the message exceeds MaxMessageLength.
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	// ErrMessageInvalid indicates the message is not valid UTF-8.
	ErrMessageInvalid = errors.New("message contains invalid characters")
)
