package main

import "github.com/hajimehoshi/ebiten/v2"

// ActionID represents a logical viewer action
type ActionID int

const (
	ActionNone ActionID = iota
	ActionMoveLeft
	ActionMoveRight
	ActionDash
	ActionJump
	ActionGlide
	ActionGhost
	ActionDie
	ActionLevelUp
	ActionSave
	ActionLoad
	ActionZoom
	ActionCount // Must be last - used for array sizing
)

// InputBinding represents a single key or button binding for an action
type InputBinding struct {
	Keys                   []ebiten.Key
	StandardGamepadButtons []ebiten.StandardGamepadButton
}

// InputConfig holds all input mappings
type InputConfig struct {
	Bindings map[ActionID]InputBinding
	// Deadzone for analog stick input (0.0 to 1.0)
	AnalogDeadzone float64
}

var Input = InputConfig{
	AnalogDeadzone: 0.25,
	Bindings: map[ActionID]InputBinding{
		ActionMoveLeft: {
			Keys: []ebiten.Key{ebiten.KeyLeft, ebiten.KeyA},
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonLeftLeft,
			},
		},
		ActionMoveRight: {
			Keys: []ebiten.Key{ebiten.KeyRight, ebiten.KeyD},
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonLeftRight,
			},
		},
		ActionDash: {
			Keys: []ebiten.Key{ebiten.KeyZ},
			// X / Square button
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonRightLeft,
			},
		},
		ActionJump: {
			Keys: []ebiten.Key{ebiten.KeyX, ebiten.KeyW},
			// A / Cross button
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonRightBottom,
			},
		},
		ActionGlide: {
			Keys: []ebiten.Key{ebiten.KeySpace},
			// B / Circle button
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonRightRight,
			},
		},
		ActionGhost: {
			Keys: []ebiten.Key{ebiten.KeyG},
			// Y / Triangle button
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonRightTop,
			},
		},
		ActionDie: {
			Keys: []ebiten.Key{ebiten.KeyK},
		},
		ActionLevelUp: {
			Keys: []ebiten.Key{ebiten.KeyL},
			StandardGamepadButtons: []ebiten.StandardGamepadButton{
				ebiten.StandardGamepadButtonFrontTopRight,
			},
		},
		ActionSave: {
			Keys: []ebiten.Key{ebiten.KeyF5},
		},
		ActionLoad: {
			Keys: []ebiten.Key{ebiten.KeyF9},
		},
		ActionZoom: {
			Keys: []ebiten.Key{ebiten.KeyEqual},
		},
	},
}

// ActionState is one action's pressed state this frame.
type ActionState struct {
	Pressed      bool
	JustPressed  bool
	JustReleased bool
}

// InputState double-buffers polled actions.
type InputState struct {
	Current  [ActionCount]bool
	Previous [ActionCount]bool
}

// Reusable slice for gamepad IDs to avoid allocations
var gamepadIDs []ebiten.GamepadID

// Poll swaps buffers and reads keyboard, gamepad buttons and the left stick.
func (in *InputState) Poll() {
	in.Previous = in.Current
	in.Current = [ActionCount]bool{}

	gamepadIDs = ebiten.AppendGamepadIDs(gamepadIDs[:0])

	for actionID, binding := range Input.Bindings {
		for _, key := range binding.Keys {
			if ebiten.IsKeyPressed(key) {
				in.Current[actionID] = true
			}
		}
		for _, gpID := range gamepadIDs {
			if !ebiten.IsStandardGamepadLayoutAvailable(gpID) {
				continue
			}
			for _, btn := range binding.StandardGamepadButtons {
				if ebiten.IsStandardGamepadButtonPressed(gpID, btn) {
					in.Current[actionID] = true
				}
			}
		}
	}

	// Merge analog stick into directional actions
	for _, gpID := range gamepadIDs {
		if !ebiten.IsStandardGamepadLayoutAvailable(gpID) {
			continue
		}
		horizontal := ebiten.StandardGamepadAxisValue(gpID, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if horizontal < -Input.AnalogDeadzone {
			in.Current[ActionMoveLeft] = true
		}
		if horizontal > Input.AnalogDeadzone {
			in.Current[ActionMoveRight] = true
		}
	}
}

// Action returns the full ActionState for an action ID.
// JustPressed/JustReleased are derived from current vs previous frame.
func (in *InputState) Action(id ActionID) ActionState {
	curr := in.Current[id]
	prev := in.Previous[id]
	return ActionState{
		Pressed:      curr,
		JustPressed:  curr && !prev,
		JustReleased: !curr && prev,
	}
}
