package allocation_test

import (
	"errors"
	"testing"

	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/internal/testtracks"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id string, priority int, a, b, c int) model.ApplicantRecord {
	return model.ApplicantRecord{ID: id, Priority: priority, Scores: model.Scores{a, b, c}, Raw: []string{id}}
}

func track(src string, records ...model.ApplicantRecord) model.Track {
	return model.Track{Source: src, Records: records}
}

func ids(t model.Track) []string {
	out := make([]string, 0, len(t.Records))
	for _, r := range t.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestValidate(t *testing.T) {
	Convey("Given allocation input", t, func() {
		tracks := []model.Track{track("a"), track("b")}

		Convey("When capacities match the tracks", func() {
			So(allocation.Validate(tracks, []int{1, 0}), ShouldBeNil)
		})

		Convey("When the counts differ", func() {
			err := allocation.Validate(tracks, []int{1})
			So(errors.Is(err, allocation.ErrTrackCountMismatch), ShouldBeTrue)
		})

		Convey("When a capacity is negative", func() {
			err := allocation.Validate(tracks, []int{1, -1})
			So(errors.Is(err, allocation.ErrNegativeCapacity), ShouldBeTrue)
		})
	})
}

func TestAllocate(t *testing.T) {
	Convey("Given an applicant who wins their first choice", t, func() {
		tracks := []model.Track{
			track("a", rec("1", 1, 10, 10, 10)),
			track("b", rec("1", 2, 0, 0, 0)),
		}
		caps := []int{1, 1}
		res := allocation.Allocate(tracks, caps)

		Convey("Then the first track should admit them", func() {
			So(ids(res.Tracks[0]), ShouldResemble, []string{"1"})
			So(allocation.Rank(res.Tracks[0], "1", 1), ShouldResemble, allocation.Placement{Status: allocation.Admitted, Position: 1})
			score, ok := allocation.MinQualifyingScore(res.Tracks[0], 1)
			So(ok, ShouldBeTrue)
			So(score, ShouldEqual, 30)
		})

		Convey("Then the second track should drop them", func() {
			So(res.Tracks[1].Records, ShouldBeEmpty)
			So(allocation.Rank(res.Tracks[1], "1", 1).Status, ShouldEqual, allocation.NotListed)
			_, ok := allocation.MinQualifyingScore(res.Tracks[1], 1)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the run should settle in two passes", func() {
			So(res.Stats, ShouldResemble, allocation.Stats{Passes: 2, Removals: 1, Demotions: 0})
		})

		Convey("Then the input should be left untouched", func() {
			So(tracks[1].Records, ShouldHaveLength, 1)
			So(tracks[1].Records[0].Priority, ShouldEqual, 2)
		})
	})

	Convey("Given two contenders with equal sums for one seat", t, func() {
		tracks := []model.Track{track("a", rec("x", 1, 50, 50, 50), rec("y", 1, 60, 40, 50))}
		res := allocation.Allocate(tracks, []int{1})

		Convey("Then the earlier record should win", func() {
			So(allocation.Rank(res.Tracks[0], "x", 1).Status, ShouldEqual, allocation.Admitted)
			So(allocation.Rank(res.Tracks[0], "y", 1), ShouldResemble, allocation.Placement{Status: allocation.NotAdmitted, Position: 2})
		})
	})

	Convey("Given an applicant absent from the visited track", t, func() {
		tracks := []model.Track{
			track("a", rec("x", 1, 10, 0, 0)),
			track("b", rec("y", 3, 5, 0, 0)),
		}
		res := allocation.Allocate(tracks, []int{1, 1})

		Convey("Then they should still move up one step per visit", func() {
			So(res.Tracks[1].Records[0].Priority, ShouldEqual, 1)
			So(res.Stats.Demotions, ShouldEqual, 2)
			So(res.Stats.Passes, ShouldEqual, 3)
		})
	})

	Convey("Given three tracks and a third-choice applicant", t, func() {
		tracks := []model.Track{track("a"), track("b"), track("c", rec("z", 3, 1, 1, 1))}
		res := allocation.Allocate(tracks, []int{1, 1, 1})

		Convey("Then both earlier visits in one pass should promote them", func() {
			So(res.Tracks[2].Records[0].Priority, ShouldEqual, 1)
			So(res.Stats, ShouldResemble, allocation.Stats{Passes: 2, Removals: 0, Demotions: 2})
		})
	})

	Convey("Given a second-choice applicant whose first choice has no seats", t, func() {
		w := rec("w", 2, 30, 30, 30)
		first := rec("w", 1, 30, 30, 30)

		Convey("When the seated track is visited first", func() {
			res := allocation.Allocate([]model.Track{track("a", w), track("b", first)}, []int{1, 0})

			Convey("Then an extra pass should be needed", func() {
				So(res.Stats.Passes, ShouldEqual, 3)
				So(ids(res.Tracks[0]), ShouldResemble, []string{"w"})
				So(res.Tracks[1].Records, ShouldBeEmpty)
			})
		})

		Convey("When the empty track is visited first", func() {
			res := allocation.Allocate([]model.Track{track("b", first), track("a", w)}, []int{0, 1})

			Convey("Then the same outcome should be reached sooner", func() {
				So(res.Stats.Passes, ShouldEqual, 2)
				So(ids(res.Tracks[1]), ShouldResemble, []string{"w"})
				So(res.Tracks[0].Records, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a track with capacity 0", t, func() {
		tracks := []model.Track{
			track("t", rec("a", 1, 20, 20, 10), rec("c", 1, 10, 10, 10), rec("b", 1, 0, 0, 0)),
			track("u", rec("a", 2, 20, 20, 10)),
		}
		res := allocation.Allocate(tracks, []int{0, 1})

		Convey("Then it should admit nobody", func() {
			So(allocation.Rank(res.Tracks[0], "c", 0), ShouldResemble, allocation.Placement{Status: allocation.NotAdmitted, Position: 1})
		})

		Convey("Then its minimum should cover every nonzero scorer", func() {
			score, ok := allocation.MinQualifyingScore(res.Tracks[0], 0)
			So(ok, ShouldBeTrue)
			So(score, ShouldEqual, 30)
		})

		Convey("Then the applicant should move on to the seated track", func() {
			So(allocation.Rank(res.Tracks[1], "a", 1).Status, ShouldEqual, allocation.Admitted)
			So(ids(res.Tracks[0]), ShouldResemble, []string{"c", "b"})
		})
	})

	Convey("Given any allocation", t, func() {
		tracks := []model.Track{
			track("a", rec("1", 1, 90, 80, 70), rec("2", 2, 60, 60, 60), rec("3", 1, 50, 50, 50)),
			track("b", rec("2", 1, 60, 60, 60), rec("1", 2, 90, 80, 70)),
		}
		caps := []int{1, 1}
		res := allocation.Allocate(tracks, caps)

		Convey("Then the result should not alias the input", func() {
			res.Tracks[0].Records[0].Raw[0] = "changed"
			So(tracks[0].Records[0].Raw[0], ShouldEqual, "1")
		})

		Convey("Then running it again should give the same result", func() {
			So(allocation.Allocate(tracks, caps), ShouldResemble, res)
		})

		Convey("Then allocating the result should change nothing", func() {
			So(testtracks.CheckIdempotent(res, caps), ShouldBeNil)
		})

		Convey("Then the observer should see every pass", func() {
			var passes []int
			allocation.AllocateObserved(tracks, caps, func(pass int, sizes []int) {
				passes = append(passes, pass)
				So(sizes, ShouldHaveLength, 2)
			})
			So(len(passes), ShouldEqual, res.Stats.Passes)
		})
	})
}

func TestAllocateProperties(t *testing.T) {
	Convey("Given random fixtures", t, func() {
		cfg := testtracks.DefaultConfig()
		cfg.Applicants = 200
		cfg.Tracks = 6
		cfg.MaxChoices = 4
		cfg.MinCapacity = 0
		cfg.MaxCapacity = 25

		for seed := uint64(100); seed < 130; seed++ {
			cfg.Seed = seed
			fx, err := testtracks.Generate(cfg)
			So(err, ShouldBeNil)

			res := allocation.Allocate(fx.Tracks, fx.Capacities)
			So(testtracks.CheckConservation(fx.Tracks, res), ShouldBeNil)
			So(testtracks.CheckExclusive(res, fx.Capacities), ShouldBeNil)
			So(testtracks.CheckIdempotent(res, fx.Capacities), ShouldBeNil)
			So(testtracks.CheckShrinking(fx.Tracks, fx.Capacities), ShouldBeNil)
		}
	})
}
