package app

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	toastLifetime = 4 * time.Second
	toastWidth    = 340
	toastHeight   = 28
	toastMargin   = 10
	maxToasts     = 5
)

// Toast is a single status message
type Toast struct {
	Text       string
	Background color.RGBA
	CreatedAt  time.Time
}

// ToastManager manages the stack of active status messages
type ToastManager struct {
	toasts []Toast
}

// NewToastManager creates an empty toast manager
func NewToastManager() *ToastManager {
	return &ToastManager{}
}

// Info shows a neutral status message
func (tm *ToastManager) Info(text string) {
	tm.push(text, color.RGBA{40, 44, 52, 230})
}

// Success shows a confirmation message
func (tm *ToastManager) Success(text string) {
	tm.push(text, color.RGBA{36, 84, 48, 230})
}

// Error shows a failure message
func (tm *ToastManager) Error(text string) {
	tm.push(text, color.RGBA{110, 38, 38, 230})
}

func (tm *ToastManager) push(text string, bg color.RGBA) {
	tm.toasts = append(tm.toasts, Toast{
		Text:       text,
		Background: bg,
		CreatedAt:  time.Now(),
	})
	if len(tm.toasts) > maxToasts {
		tm.toasts = tm.toasts[len(tm.toasts)-maxToasts:]
	}
}

// Update expires old toasts
func (tm *ToastManager) Update() {
	now := time.Now()
	alive := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.CreatedAt) < toastLifetime {
			alive = append(alive, t)
		}
	}
	tm.toasts = alive
}

// Draw renders the toast stack in the bottom-right corner
func (tm *ToastManager) Draw(screen *ebiten.Image, screenW, screenH int) {
	x := screenW - toastWidth - toastMargin
	y := screenH - toastMargin
	for i := len(tm.toasts) - 1; i >= 0; i-- {
		t := tm.toasts[i]
		y -= toastHeight + 6

		vector.DrawFilledRect(screen, float32(x), float32(y), toastWidth, toastHeight, t.Background, false)
		vector.StrokeRect(screen, float32(x), float32(y), toastWidth, toastHeight, 1, color.RGBA{200, 200, 200, 120}, false)
		drawText(screen, t.Text, x+8, y+7, textWhite)
	}
}
