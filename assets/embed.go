package assets

import (
	"embed"
)

//go:embed questions.json credits.json
var FS embed.FS

func QuestionsJSON() ([]byte, error) {
	return FS.ReadFile("questions.json")
}

func CreditsJSON() ([]byte, error) {
	return FS.ReadFile("credits.json")
}
