package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/cascade/internal/domain/allocation"
	types "github.com/okian/cascade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlacement(t *testing.T) {
	Convey("Given allocation placements", t, func() {
		Convey("When converting an admitted placement", func() {
			p := types.NewPlacement(allocation.Placement{Status: allocation.Admitted, Position: 3})

			Convey("Then it should keep status and position", func() {
				So(p.Status, ShouldEqual, "admitted")
				So(p.Position, ShouldEqual, 3)
				So(p.Admitted(), ShouldBeTrue)
			})
		})

		Convey("When converting a missing applicant", func() {
			p := types.NewPlacement(allocation.Placement{})
			data, err := json.Marshal(p)

			Convey("Then the position should be omitted", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"status":"not_listed"}`)
				So(p.Admitted(), ShouldBeFalse)
			})
		})
	})
}

func TestMinScore(t *testing.T) {
	Convey("Given min-score query results", t, func() {
		Convey("When somebody qualifies", func() {
			m := types.NewMinScore(245, true, 10)

			Convey("Then the score should be set", func() {
				So(m.Score, ShouldNotBeNil)
				So(*m.Score, ShouldEqual, 245)
				So(m.Uncapped, ShouldBeFalse)
			})
		})

		Convey("When nobody qualifies", func() {
			m := types.NewMinScore(0, false, 10)
			data, _ := json.Marshal(m)

			Convey("Then the score should be null", func() {
				So(m.Score, ShouldBeNil)
				So(string(data), ShouldEqual, `{"score":null}`)
			})
		})

		Convey("When the track has no seat budget", func() {
			m := types.NewMinScore(120, true, 0)

			Convey("Then it should be marked uncapped", func() {
				So(m.Uncapped, ShouldBeTrue)
			})
		})
	})
}

func TestRunStats(t *testing.T) {
	Convey("Given engine statistics", t, func() {
		s := types.NewRunStats(allocation.Stats{Passes: 3, Removals: 4, Demotions: 5})
		So(s, ShouldResemble, types.RunStats{Passes: 3, Removals: 4, Demotions: 5})
	})
}
