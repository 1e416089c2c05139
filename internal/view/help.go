package view

import "strings"

// Help returns usage examples for the given slash command.
func Help(command string) string {
	if command == "" {
		command = "/openpoll"
	}
	examples := []struct {
		title string
		args  string
	}{
		{"Simple poll", ``},
		{"Anonymous poll", `anonymous `},
		{"Limited choice poll", `limit 2 `},
		{"Anonymous limited choice poll", `anonymous limit 2 `},
		{"Hidden votes until the creator reveals them", `hidden `},
	}

	var b strings.Builder
	b.WriteString("*Open source poll for slack*\n")
	for _, ex := range examples {
		b.WriteString("\n*" + ex.title + "*\n```\n")
		b.WriteString(command + " " + ex.args + `"What's your favourite color ?" "Red" "Green" "Blue" "Yellow"`)
		b.WriteString("\n```\n")
	}
	b.WriteString("\nQuotes may be \", ' or “”, the first quote decides. Escape a quote inside an option with \\.")
	return b.String()
}

// Footer returns the footer pointing to the help of command.
func Footer(command string) string {
	if command == "" {
		return DefaultFooter
	}
	return "Type `" + command + " help` to learn how to create polls"
}
