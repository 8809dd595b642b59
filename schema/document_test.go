package schema

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDocument(t *testing.T) {
	convey.Convey("document metadata accessors", t, func() {
		var (
			score    = 0.42
			citation = map[string]any{"source": "handbook.pdf", "page": 3}
			vector   = []float64{1.1, 2.2}
		)

		// MetaData 为 nil 时也能链式设置
		d := &Document{ID: "doc-1", Content: "qwe"}
		d.WithScore(score).
			WithCitation(citation).
			WithSource("handbook.pdf").
			WithDenseVector(vector)

		convey.So(d.Score(), convey.ShouldEqual, score)
		convey.So(d.Citation(), convey.ShouldResemble, citation)
		convey.So(d.Source(), convey.ShouldEqual, "handbook.pdf")
		convey.So(d.DenseVector(), convey.ShouldResemble, vector)
		convey.So(d.String(), convey.ShouldEqual, "qwe")
	})

	convey.Convey("zero values on empty metadata", t, func() {
		d := &Document{}
		convey.So(d.Score(), convey.ShouldEqual, 0)
		convey.So(d.Citation(), convey.ShouldBeNil)
		convey.So(d.Source(), convey.ShouldEqual, "")
		convey.So(d.DenseVector(), convey.ShouldBeNil)
	})
}
