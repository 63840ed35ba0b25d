// Package interactive provides the terminal menu and prompts of the
// harness CLI.
package interactive

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// MenuOption represents a menu item with its associated action
type MenuOption struct {
	Name        string
	Description string
	Action      func() error
}

var (
	// ErrExit is returned when the user chooses to exit
	ErrExit = errors.New("exit")
	// ErrInvalidSelection is returned when an invalid menu option is selected
	ErrInvalidSelection = errors.New("invalid selection")
)

const exitChoice = "Exit"

// ShowMainMenu displays the menu and runs the selected action
func ShowMainMenu(options []MenuOption) error {
	choices := make([]string, 0, len(options)+1)
	optionMap := make(map[string]MenuOption, len(options))

	for _, opt := range options {
		choice := fmt.Sprintf("%s - %s", opt.Name, opt.Description)
		choices = append(choices, choice)
		optionMap[choice] = opt
	}

	choices = append(choices, exitChoice)

	var selected string
	prompt := &survey.Select{
		Message:  "What would you like to do?",
		Options:  choices,
		PageSize: len(choices),
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return ErrExit
	}

	if selected == exitChoice {
		return ErrExit
	}

	if option, ok := optionMap[selected]; ok {
		return option.Action()
	}

	return ErrInvalidSelection
}

// PauseForEnter waits for the user to press Enter
func PauseForEnter() {
	fmt.Println("\nPress Enter to continue...")
	_, _ = fmt.Scanln()
}

// Confirm asks for a yes/no answer, defaulting to def
func Confirm(message string, def bool) bool {
	confirmed := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	_ = survey.AskOne(prompt, &confirmed)

	return confirmed
}

// Input asks for a line of text, defaulting to def
func Input(message, def string) string {
	answer := def
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}
	_ = survey.AskOne(prompt, &answer)

	return answer
}

// Select asks for one of options, defaulting to def
func Select(message string, options []string, def string) string {
	answer := def
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: def,
	}
	_ = survey.AskOne(prompt, &answer)

	return answer
}
