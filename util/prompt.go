package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompts read answers from In and write questions to Out.
var (
	In  io.Reader = os.Stdin
	Out io.Writer = os.Stdout
)

func readAnswer(prompt string) (string, bool) {
	fmt.Fprint(Out, prompt)
	response, err := bufio.NewReader(In).ReadString('\n')
	if err != nil && response == "" {
		return "", false
	}
	return strings.TrimSpace(response), true
}

// PromptString asks for a value, returning def on an empty answer or EOF.
func PromptString(prompt string, def string) string {
	response, ok := readAnswer(fmt.Sprintf("%s (%s): ", prompt, def))
	if !ok || response == "" {
		return def
	}
	return response
}

func PromptYN(prompt string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	response, ok := readAnswer(fmt.Sprintf("%s (%s): ", prompt, hint))
	if !ok || response == "" {
		return def
	}
	switch strings.ToLower(response) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return def
}
