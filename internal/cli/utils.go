package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter asks questions on out and reads answers from in
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// withRetry prompts until validator accepts the input. Running out of input
// is an error, so a closed stdin cannot loop forever.
func (p *prompter) withRetry(prompt string, validator func(string) (string, error)) (string, error) {
	for {
		fmt.Fprint(p.out, prompt)
		input, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimSpace(input)

		result, vErr := validator(input)
		if vErr == nil {
			return result, nil
		}
		fmt.Fprintf(p.out, "%s\n\n", FormatError("❌ "+vErr.Error()))

		if err == io.EOF {
			return "", vErr
		}
	}
}

// yesNo prompts for yes/no; an empty answer means no
func (p *prompter) yesNo(prompt string) (bool, error) {
	result, err := p.withRetry(prompt, func(input string) (string, error) {
		lower := strings.ToLower(input)
		if lower == "y" || lower == "yes" || lower == "n" || lower == "no" || lower == "" {
			return lower, nil
		}
		return "", fmt.Errorf("invalid input: %s (enter y/yes/n/no or press Enter for no)", input)
	})
	if err != nil {
		return false, err
	}
	return result == "y" || result == "yes", nil
}

// optional prompts for input, returning defaultValue for an empty answer
func (p *prompter) optional(prompt string, defaultValue string) (string, error) {
	return p.withRetry(prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		return input, nil
	})
}

// truncate shortens s to max runes, keeping the start and the end
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 5 || len(r) <= max {
		return s
	}
	head := (max - 3) / 2
	tail := max - 3 - head
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}
