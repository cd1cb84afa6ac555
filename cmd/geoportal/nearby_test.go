package main

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"
)

func nearbyTestContext(t *testing.T, args map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("nearby", flag.ContinueOnError)
	set.String("location", "", "")
	set.Float64("lat", 0, "")
	set.Float64("long", 0, "")
	for name, value := range args {
		if err := set.Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}
	return cli.NewContext(nil, set, nil)
}

func TestNearbyCenterRequiresCoordinates(t *testing.T) {
	if _, _, err := nearbyCenter(nearbyTestContext(t, nil)); err == nil {
		t.Fatal("expected an error when no location and no coordinates are given")
	}
	if _, _, err := nearbyCenter(nearbyTestContext(t, map[string]string{"lat": "40.4"})); err == nil {
		t.Fatal("expected an error when only latitude is given")
	}
}

func TestNearbyCenterAcceptsZeroCoordinates(t *testing.T) {
	lat, lng, err := nearbyCenter(nearbyTestContext(t, map[string]string{"lat": "0", "long": "0"}))
	if err != nil {
		t.Fatalf("nearbyCenter() failed: %v", err)
	}
	if lat != 0 || lng != 0 {
		t.Errorf("center = %f, %f; expected 0, 0", lat, lng)
	}
}
