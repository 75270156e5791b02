// Package ui builds the viewer's ebitenui overlay.
package ui

import (
	"fmt"
	"image/color"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/fonts"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

var (
	colorTitle    = color.RGBA{255, 255, 255, 255}
	colorRow      = color.RGBA{200, 200, 220, 255}
	colorCooldown = color.RGBA{140, 140, 160, 255}
	colorStatus   = color.RGBA{255, 200, 100, 255}
)

// AbilityPanel lists the abilities of the local character with their
// state, level and cooldown, plus one status line.
type AbilityPanel struct {
	UI *ebitenui.UI

	title       *widget.Label
	rows        *widget.Container
	rowLabels   []*widget.Label
	statusLabel *widget.Label

	titleFace  text.Face
	normalFace text.Face
	smallFace  text.Face
}

// NewAbilityPanel needs fonts.LoadDefaults to have run.
func NewAbilityPanel() *AbilityPanel {
	p := &AbilityPanel{
		titleFace:  fonts.Title.Face(),
		normalFace: fonts.Mono.Face(),
		smallFace:  fonts.Small.Face(),
	}
	p.buildUI()
	return p
}

func (p *AbilityPanel) buildUI() {
	rootContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	content := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{20, 20, 30, 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(6)),
			widget.RowLayoutOpts.Spacing(2),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)

	p.title = widget.NewLabel(
		widget.LabelOpts.Text("", &p.titleFace, &widget.LabelColor{Idle: colorTitle}),
	)
	content.AddChild(p.title)

	p.rows = widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(1),
		)),
	)
	content.AddChild(p.rows)

	p.statusLabel = widget.NewLabel(
		widget.LabelOpts.Text("", &p.smallFace, &widget.LabelColor{Idle: colorStatus}),
	)
	content.AddChild(p.statusLabel)

	rootContainer.AddChild(content)
	p.UI = &ebitenui.UI{Container: rootContainer}
}

// SetCharacter shows the abilities of the named character. A nil list
// clears the rows.
func (p *AbilityPanel) SetCharacter(name string, list []*abilities.Ability) {
	p.title.Label = name
	if len(list) != len(p.rowLabels) {
		p.rows.RemoveChildren()
		p.rowLabels = p.rowLabels[:0]
		for range list {
			l := widget.NewLabel(
				widget.LabelOpts.Text("", &p.normalFace, &widget.LabelColor{Idle: colorRow, Disabled: colorCooldown}),
			)
			p.rows.AddChild(l)
			p.rowLabels = append(p.rowLabels, l)
		}
	}
	for i, a := range list {
		p.rowLabels[i].Label = AbilityLine(a)
		p.rowLabels[i].GetWidget().Disabled = a.OnCooldown()
	}
}

func (p *AbilityPanel) SetStatus(msg string) {
	p.statusLabel.Label = msg
}

func (p *AbilityPanel) Update() {
	p.UI.Update()
}

func (p *AbilityPanel) Draw(screen *ebiten.Image) {
	p.UI.Draw(screen)
}

// AbilityLine formats one panel row.
func AbilityLine(a *abilities.Ability) string {
	line := fmt.Sprintf("%-12s %-8s", a.Name(), a.State())
	if a.Levelable() {
		line += fmt.Sprintf(" lv%d/%d", a.Level(), a.MaxLevel())
	}
	if a.OnCooldown() {
		line += fmt.Sprintf(" cd %d", a.CooldownLeft())
	}
	return line
}
