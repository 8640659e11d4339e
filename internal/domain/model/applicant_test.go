package model_test

import (
	"testing"

	model "github.com/okian/cascade/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScores(t *testing.T) {
	convey.Convey("Given a score triple", t, func() {
		convey.Convey("When summing non-zero scores", func() {
			s := model.Scores{70, 80, 95}

			convey.Convey("Then the sum should add all three", func() {
				convey.So(s.Sum(), convey.ShouldEqual, 245)
			})
		})

		convey.Convey("When the triple is zero valued", func() {
			var s model.Scores

			convey.Convey("Then it should still have three entries and sum to zero", func() {
				convey.So(len(s), convey.ShouldEqual, model.ScoreCount)
				convey.So(s.Sum(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestTrackClone(t *testing.T) {
	convey.Convey("Given a track with raw payloads", t, func() {
		orig := model.Track{
			Source: "a.csv",
			Records: []model.ApplicantRecord{
				{ID: "1", Priority: 2, Scores: model.Scores{1, 2, 3}, Raw: []string{"x", "y"}},
			},
		}

		convey.Convey("When the clone is mutated", func() {
			cp := orig.Clone()
			cp.Records[0].Priority = 1
			cp.Records[0].Raw[0] = "changed"

			convey.Convey("Then the original should be untouched", func() {
				convey.So(orig.Records[0].Priority, convey.ShouldEqual, 2)
				convey.So(orig.Records[0].Raw[0], convey.ShouldEqual, "x")
				convey.So(cp.Source, convey.ShouldEqual, "a.csv")
			})
		})

		convey.Convey("When looking up records by id", func() {
			r, ok := orig.Find("1")
			_, missing := orig.Find("2")

			convey.Convey("Then only present ids should be found", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r.Scores.Sum(), convey.ShouldEqual, 6)
				convey.So(missing, convey.ShouldBeFalse)
			})
		})
	})
}
