package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// formatCount groups thousands ("12,345").
func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

func formatMs(ms int64) string {
	return numberPrinter.Sprintf("%d ms", ms)
}

// kindLabel turns a failure bucket key such as "invalid_input" into "Invalid Input".
func kindLabel(kind string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(kind, "_", " "))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDBFS(value float64) string {
	return fmt.Sprintf("%g dBFS", value)
}
