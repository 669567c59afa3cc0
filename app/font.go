package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// uiFont is the face used for all on-screen labels.
var uiFont font.Face = basicfont.Face7x13

var (
	textWhite = color.RGBA{235, 235, 235, 255}
	textDim   = color.RGBA{180, 180, 180, 255}
)

// drawText draws str with its top-left corner at (x, y).
func drawText(screen *ebiten.Image, str string, x, y int, clr color.Color) {
	text.Draw(screen, str, uiFont, x, y+uiFont.Metrics().Ascent.Ceil(), clr)
}

// textWidth returns the advance of str in pixels.
func textWidth(str string) int {
	return font.MeasureString(uiFont, str).Ceil()
}
