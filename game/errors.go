package game

import "errors"

// Messages are shown verbatim by the client.
var (
	ErrRoomNotFound   = errors.New("Room not found")
	ErrGameInProgress = errors.New("Game already in progress")
	ErrRoomFull       = errors.New("Room is full")
	ErrNameTaken      = errors.New("Name already taken")
	ErrInvalidName    = errors.New("Enter your name!")
)

var ErrSendBufferFull = errors.New("send-buffer-full")
