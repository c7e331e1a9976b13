package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all viewer actions with default keybindings, mouse bindings, and descriptions.
// Toolbar commands are not listed here; see commandTable.
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"Escape"}, []string{}, "Quit application"},
	{"help", []string{"Shift+Slash"}, []string{}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide image info"},
	{"next", []string{"Ctrl+KeyK", "ArrowRight"}, []string{}, "Next image"},
	{"previous", []string{"Ctrl+KeyJ", "ArrowLeft"}, []string{}, "Previous image"},
	{"jump_first", []string{"Home"}, []string{}, "Jump to first image"},
	{"jump_last", []string{"End"}, []string{}, "Jump to last image"},
	{"fullscreen", []string{"F11"}, []string{}, "Toggle fullscreen"},

	// Zoom actions
	{"zoom_in", []string{"Equal"}, []string{"WheelUp"}, "Zoom in"},
	{"zoom_out", []string{"Minus"}, []string{"WheelDown"}, "Zoom out"},
	{"zoom_reset", []string{"Key0"}, []string{}, "Reset zoom and pan"},
}

// ActionExecutor maps action names onto InputActions calls. Keyboard and
// mouse bindings both dispatch through it.
type ActionExecutor struct{}

func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction runs action. amount scales zoom actions: 1 for a key press,
// the wheel magnitude for a wheel event. It reports whether action is known.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, amount float64) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "jump_first":
		inputActions.JumpFirst()
	case "jump_last":
		inputActions.JumpLast()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "zoom_in":
		inputActions.ZoomBy(amount)
	case "zoom_out":
		inputActions.ZoomBy(-amount)
	case "zoom_reset":
		inputActions.ZoomReset()
	default:
		return false
	}

	return true
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}
