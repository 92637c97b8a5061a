package app

import (
	"fmt"

	"github.com/phillarmonic/figlet/figletlib"
)

// ShowVersion prints a banner and build metadata, matching the teacher
// CLI's cosmetic use of figlet for its own version command.
func ShowVersion(version, commit, date string) error {
	loader := figletlib.NewEmbededLoader()
	font, err := loader.GetFontByName("standard")
	if err != nil {
		return err
	}

	startColor, _ := figletlib.ParseColor("#4FC3F7")
	endColor, _ := figletlib.ParseColor("#7E57C2")
	gradientConfig := figletlib.ColorConfig{
		Mode:       figletlib.ColorModeGradient,
		StartColor: startColor,
		EndColor:   endColor,
	}

	fmt.Println()
	figletlib.PrintColoredMsg("mockserve", font, 80, font.Settings(), "left", gradientConfig)

	fmt.Println("mockscript: a scripted JSON mock HTTP server")
	fmt.Println()
	fmt.Printf("Version %s\n", version)
	if commit != "unknown" {
		fmt.Printf("commit: %s\n", commit)
	}
	if date != "unknown" {
		fmt.Printf("built: %s\n", date)
	}
	return nil
}
