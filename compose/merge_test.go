package compose

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDeepMerge(t *testing.T) {
	Convey("deep merge", t, func() {
		Convey("maps merge recursively and later scalars win", func() {
			dst := map[string]any{"a": 1.0, "user": map[string]any{"name": "Ann", "age": 20.0}}
			src := map[string]any{"a": 2.0, "user": map[string]any{"age": 21.0}}
			So(deepMerge(dst, src), ShouldResemble, map[string]any{
				"a":    2.0,
				"user": map[string]any{"name": "Ann", "age": 21.0},
			})
			So(dst["a"], ShouldEqual, 1.0)
		})

		Convey("arrays concatenate", func() {
			out := deepMerge(map[string]any{"tags": []any{"x"}}, map[string]any{"tags": []any{"y"}})
			So(out, ShouldResemble, map[string]any{"tags": []any{"x", "y"}})
		})

		Convey("nil never overrides", func() {
			So(deepMerge(map[string]any{"a": 1.0}, nil), ShouldResemble, map[string]any{"a": 1.0})
			out := deepMerge(map[string]any{"a": 1.0}, map[string]any{"a": nil})
			So(out, ShouldResemble, map[string]any{"a": 1.0})
		})

		Convey("mismatched kinds take the later value", func() {
			So(deepMerge(map[string]any{"a": 1.0}, "text"), ShouldEqual, "text")
			So(deepMerge([]any{1.0}, map[string]any{"a": 1.0}), ShouldResemble, map[string]any{"a": 1.0})
		})
	})
}
