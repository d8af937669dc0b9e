package itree_test

import (
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/container/itree"
)

func TestTree_FindIntervalsOverlap(t *testing.T) {
	Convey("Given intervals [0,10],[5,15],[20,30],[25,35] with values 1..4", t, func() {
		a := wmem.ForceNew(wmem.Simple)
		defer a.Destroy()
		tr := itree.New[int](a)
		tr.Insert(0, 10, 1)
		tr.Insert(5, 15, 2)
		tr.Insert(20, 30, 3)
		tr.Insert(25, 35, 4)

		Convey("When querying [12,22]", func() {
			got := tr.FindIntervals(12, 22)

			var values []int
			for _, iv := range got {
				values = append(values, iv.Value)
			}
			sort.Ints(values)

			So(values, ShouldResemble, []int{2, 3})
		})

		Convey("When querying a range covering everything", func() {
			got := tr.FindIntervals(0, 35)
			So(len(got), ShouldEqual, 4)
		})

		Convey("When querying a range covering nothing", func() {
			got := tr.FindIntervals(100, 200)
			So(got, ShouldBeEmpty)
		})

		So(tr.IsEmpty(), ShouldBeFalse)
		So(tr.Count(), ShouldEqual, 4)
	})
}

func TestTree_IsEmpty(t *testing.T) {
	Convey("Given a fresh interval tree", t, func() {
		a := wmem.ForceNew(wmem.Simple)
		defer a.Destroy()
		tr := itree.New[int](a)

		So(tr.IsEmpty(), ShouldBeTrue)
	})
}
