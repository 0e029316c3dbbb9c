package lruk

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFrameID    = errors.New("lruk: invalid frame id")
	ErrRemovePinnedFrame = errors.New("lruk: attempted to remove a pinned frame")
	ErrInvalidCapacity   = errors.New("lruk: invalid capacity")
	ErrInvalidK          = errors.New("lruk: invalid k")
)

func invalidFrameError(id FrameID, capacity int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidFrameID, id, capacity)
}
