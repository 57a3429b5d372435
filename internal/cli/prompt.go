package cli

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks the user for input. SurveyPrompter is the terminal version.
type Prompter interface {
	Select(message string, options []string, defaultIndex int) (int, error)
	// Input reads one line. A non-empty requiredMsg rejects blank answers with that message.
	Input(message, requiredMsg string) (string, error)
	// Multiline reads free text until an empty line.
	Multiline(message, requiredMsg string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

// SurveyPrompter prompts on the controlling terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Select(message string, options []string, defaultIndex int) (int, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options, PageSize: 10}
	if defaultIndex >= 0 && defaultIndex < len(options) {
		prompt.Default = options[defaultIndex]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	for i, option := range options {
		if option == out {
			return i, nil
		}
	}
	return -1, nil
}

func (SurveyPrompter) Input(message, requiredMsg string) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Input{Message: message}, &out, requiredOpts(requiredMsg)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (SurveyPrompter) Multiline(message, requiredMsg string) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Multiline{Message: message}, &out, requiredOpts(requiredMsg)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func requiredOpts(msg string) []survey.AskOpt {
	if msg == "" {
		return nil
	}
	return []survey.AskOpt{survey.WithValidator(func(ans interface{}) error {
		if s, ok := ans.(string); ok && strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	})}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
