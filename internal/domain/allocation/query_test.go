package allocation_test

import (
	"testing"

	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given a finalized track", t, func() {
		tr := track("a",
			rec("low", 1, 10, 10, 10),
			rec("high", 1, 90, 90, 90),
			rec("later", 2, 100, 100, 100),
			rec("gone", 1, 0, 0, 0),
		)

		Convey("Then contenders within capacity should be admitted", func() {
			So(allocation.Rank(tr, "high", 2), ShouldResemble, allocation.Placement{Status: allocation.Admitted, Position: 1})
			So(allocation.Rank(tr, "low", 2), ShouldResemble, allocation.Placement{Status: allocation.Admitted, Position: 2})
		})

		Convey("Then contenders past capacity should not be admitted", func() {
			So(allocation.Rank(tr, "gone", 2), ShouldResemble, allocation.Placement{Status: allocation.NotAdmitted, Position: 3})
		})

		Convey("Then members without first priority should not be listed", func() {
			So(allocation.Rank(tr, "later", 2), ShouldResemble, allocation.Placement{Status: allocation.NotListed})
		})

		Convey("Then unknown ids should not be listed", func() {
			So(allocation.Rank(tr, "nobody", 2).Status, ShouldEqual, allocation.NotListed)
		})

		Convey("Then a zero-score contender should still count as listed", func() {
			So(allocation.Rank(tr, "gone", 5).Status, ShouldEqual, allocation.Admitted)
		})
	})

	Convey("Given the status values", t, func() {
		So(allocation.Admitted.String(), ShouldEqual, "admitted")
		So(allocation.NotAdmitted.String(), ShouldEqual, "not_admitted")
		So(allocation.NotListed.String(), ShouldEqual, "not_listed")
	})
}

func TestMinQualifyingScore(t *testing.T) {
	Convey("Given three qualifying contenders", t, func() {
		tr := track("a",
			rec("a", 1, 100, 100, 100),
			rec("b", 1, 100, 100, 50),
			rec("c", 1, 100, 50, 50),
			rec("w", 1, 0, 0, 0),
			rec("p", 2, 1, 1, 1),
		)

		cases := []struct {
			capacity int
			want     int
		}{
			{capacity: 1, want: 300},
			{capacity: 2, want: 250},
			{capacity: 3, want: 200},
			{capacity: 5, want: 200},
			{capacity: 0, want: 200},
		}
		for _, tc := range cases {
			score, ok := allocation.MinQualifyingScore(tr, tc.capacity)
			So(ok, ShouldBeTrue)
			So(score, ShouldEqual, tc.want)
		}
	})

	Convey("Given only zero-score contenders", t, func() {
		tr := track("a", rec("w", 1, 0, 0, 0), rec("p", 2, 50, 50, 50))

		Convey("Then nobody should qualify", func() {
			_, ok := allocation.MinQualifyingScore(tr, 1)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty track", t, func() {
		_, ok := allocation.MinQualifyingScore(model.Track{}, 3)
		So(ok, ShouldBeFalse)
	})
}
