// Package views holds the views this deployment registers.
package views

import "interaction-lab/runtime"

// maxSnowflake is the longest platform id, used by worst case states.
const maxSnowflake = "18446744073709551615"

// All returns fresh instances of every view, in registration order.
func All() []*runtime.View {
	return []*runtime.View{
		Counter(),
		Settings(),
		Announcement(),
	}
}
