package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coffeeshop/internal/models"
)

var errLocationDisabled = errors.New("location access disabled")

// flagLocation reports the position given with -near. Without one it behaves
// like a device where location permission was denied.
type flagLocation struct {
	coords *models.Coordinates
}

func parseNear(s string) (flagLocation, error) {
	if s == "" {
		return flagLocation{}, nil
	}
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return flagLocation{}, fmt.Errorf("%q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return flagLocation{}, fmt.Errorf("%q: bad latitude", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return flagLocation{}, fmt.Errorf("%q: bad longitude", s)
	}
	return flagLocation{coords: &models.Coordinates{Lat: lat, Lng: lng}}, nil
}

func (l flagLocation) CurrentLocation(context.Context) (models.Coordinates, error) {
	if l.coords == nil {
		return models.Coordinates{}, errLocationDisabled
	}
	return *l.coords, nil
}
