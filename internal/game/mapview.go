// internal/game/mapview.go
//
// The display layer is an injected capability: the engine tells it what to
// show and receives click coordinates through Round.PlacePin. The engine
// never touches rendering.

package game

import (
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
)

// MarkerRole distinguishes the player's pin from the correct location.
type MarkerRole string

const (
	MarkerGuess   MarkerRole = "guess"
	MarkerCorrect MarkerRole = "correct"
)

// MapView is implemented by the display layer.
type MapView interface {
	PlaceMarker(p geo.Point, role MarkerRole)
	DrawConnector(a, b geo.Point)
	FitView(b geo.Bounds)
	RemoveAllOverlays()
}

// NopMapView discards all display calls. Used when no display layer is
// attached (headless server handling, tests).
type NopMapView struct{}

func (NopMapView) PlaceMarker(geo.Point, MarkerRole)  {}
func (NopMapView) DrawConnector(geo.Point, geo.Point) {}
func (NopMapView) FitView(geo.Bounds)                 {}
func (NopMapView) RemoveAllOverlays()                 {}
