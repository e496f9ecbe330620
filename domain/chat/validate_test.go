package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "general", nil},
		{"empty", "", ErrRoomNameEmpty},
		{"too long", strings.Repeat("a", MaxRoomNameLength+1), ErrRoomNameTooLong},
		{"max length", strings.Repeat("a", MaxRoomNameLength), nil},
		{"invalid utf8", string([]byte{0xff, 0xfe}), ErrRoomNameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRoomName(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRoomName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "hello", nil},
		{"empty", "", ErrMessageEmpty},
		{"too long", strings.Repeat("x", MaxMessageLength+1), ErrMessageTooLong},
		{"invalid utf8", string([]byte{0xc3, 0x28}), ErrMessageInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateMessage(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestRoomUpdate(t *testing.T) {
	if got := RoomUpdate("general"); got != "ROOM_UPDATE:general" {
		t.Errorf("RoomUpdate(general) = %q", got)
	}
	if got := RoomUpdate(""); got != "ROOM_UPDATE:None" {
		t.Errorf("RoomUpdate(\"\") = %q", got)
	}
}
