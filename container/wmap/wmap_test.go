package wmap_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/container/wmap"
)

// TestMap_AutoresetKeepsCanariesIntact checks that inserting into an
// autoreset map whose main and data allocators are both STRICT leaves every
// live allocation's canaries intact in both allocators.
func TestMap_AutoresetKeepsCanariesIntact(t *testing.T) {
	Convey("Given an autoreset map over a STRICT data allocator", t, func() {
		main := wmem.ForceNew(wmem.Strict)
		defer main.Destroy()
		data := wmem.ForceNew(wmem.Strict)
		defer data.Destroy()

		m := wmap.NewAutoreset[int, string](main, data)
		m.Insert(1, "a")
		m.Insert(2, "b")

		Convey("Then both allocators' canaries are intact", func() {
			So(func() { wmem.CheckCanaries(main) }, ShouldNotPanic)
			So(func() { wmem.CheckCanaries(data) }, ShouldNotPanic)
		})
	})
}

func TestMap_InsertOverwritesAndLookup(t *testing.T) {
	Convey("Given an empty map", t, func() {
		a := wmem.ForceNew(wmem.Simple)
		defer a.Destroy()
		m := wmap.New[string, int](a)

		Convey("When inserting the same key twice", func() {
			prev, had := m.Insert("k", 1)
			So(had, ShouldBeFalse)
			So(prev, ShouldEqual, 0)

			prev, had = m.Insert("k", 2)
			So(had, ShouldBeTrue)
			So(prev, ShouldEqual, 1)

			Convey("Then lookup sees the latest value and size is unchanged", func() {
				v, ok := m.Lookup("k")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 2)
				So(m.Size(), ShouldEqual, 1)
			})
		})

		Convey("When inserting many keys", func() {
			for i := 0; i < 200; i++ {
				m.Insert(string(rune('a'+(i%26)))+string(rune(i)), i)
			}
			So(m.Size(), ShouldEqual, 200)
		})
	})
}

func TestMap_RemoveAndContains(t *testing.T) {
	Convey("Given a map with one entry", t, func() {
		a := wmem.ForceNew(wmem.Simple)
		defer a.Destroy()
		m := wmap.New[int, string](a)
		m.Insert(1, "one")

		Convey("When removing it", func() {
			v, ok := m.Remove(1)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "one")
			So(m.Contains(1), ShouldBeFalse)
			So(m.Size(), ShouldEqual, 0)
		})
	})
}

func TestMap_Autoreset(t *testing.T) {
	Convey("Given an autoreset map paired with a data allocator", t, func() {
		main := wmem.ForceNew(wmem.Simple)
		defer main.Destroy()
		data := wmem.ForceNew(wmem.Simple)
		defer data.Destroy()

		m := wmap.NewAutoreset[int, string](main, data)
		m.Insert(1, "a")
		m.Insert(2, "b")
		So(m.Size(), ShouldEqual, 2)

		Convey("When the data allocator is freed, the map empties itself", func() {
			data.FreeAll()
			So(m.Size(), ShouldEqual, 0)
		})
	})
}
