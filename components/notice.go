package components

import "github.com/yohamta/donburi"

// NoticeStateData is a singleton queue of on-screen notices.
type NoticeStateData struct {
	Queue        []string
	DisplayTimer int // Frames remaining to display Queue[0]
}

// Active returns the notice on screen, or "".
func (n *NoticeStateData) Active() string {
	if len(n.Queue) == 0 {
		return ""
	}
	return n.Queue[0]
}

var NoticeState = donburi.NewComponentType[NoticeStateData]()
