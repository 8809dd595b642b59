package schema

import (
	"testing"

	"github.com/eino-contrib/jsonschema"
	"github.com/smartystreets/goconvey/convey"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestParamsOneOf_ToJSONSchema(t *testing.T) {
	convey.Convey("ParamsOneOf to JSON Schema", t, func() {
		convey.Convey("nil params", func() {
			var p *ParamsOneOf
			sc, err := p.ToJSONSchema()
			convey.So(err, convey.ShouldBeNil)
			convey.So(sc, convey.ShouldBeNil)
		})

		convey.Convey("user supplied JSON Schema is returned as is", func() {
			js := &jsonschema.Schema{
				Type:        "string",
				Description: "this is the only argument",
			}
			sc, err := NewParamsOneOfByJSONSchema(js).ToJSONSchema()
			convey.So(err, convey.ShouldBeNil)
			convey.So(sc, convey.ShouldEqual, js)
		})

		convey.Convey("ParameterInfo map is converted with sorted required keys", func() {
			p := NewParamsOneOfByParams(map[string]*ParameterInfo{
				"b": {Type: String, Required: true, Enum: []string{"1", "2"}},
				"a": {
					Type: Object,
					SubParams: map[string]*ParameterInfo{
						"sub": {Type: Integer, Required: true},
					},
					Required: true,
				},
				"c": {Type: Array, ElemInfo: &ParameterInfo{Type: Number}},
			})
			sc, err := p.ToJSONSchema()
			convey.So(err, convey.ShouldBeNil)
			convey.So(sc.Type, convey.ShouldEqual, "object")
			convey.So(sc.Required, convey.ShouldResemble, []string{"a", "b"})

			a, ok := sc.Properties.Get("a")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(a.Required, convey.ShouldResemble, []string{"sub"})

			c, _ := sc.Properties.Get("c")
			convey.So(c.Items.Type, convey.ShouldEqual, "number")

			b, _ := sc.Properties.Get("b")
			convey.So(b.Enum, convey.ShouldResemble, []any{"1", "2"})
		})
	})
}

func TestToolInfo_Describe(t *testing.T) {
	convey.Convey("describe tool", t, func() {
		convey.Convey("no params", func() {
			s, err := (&ToolInfo{Name: "now", Desc: "current time"}).Describe()
			convey.So(err, convey.ShouldBeNil)
			convey.So(s, convey.ShouldEqual, "now: current time")
		})

		convey.Convey("with params", func() {
			props := orderedmap.New[string, *jsonschema.Schema]()
			props.Set("city", &jsonschema.Schema{Type: "string"})
			info := &ToolInfo{
				Name:        "weather",
				Desc:        "weather of a city",
				ParamsOneOf: NewParamsOneOfByJSONSchema(&jsonschema.Schema{Type: "object", Properties: props}),
			}
			s, err := info.Describe()
			convey.So(err, convey.ShouldBeNil)
			convey.So(s, convey.ShouldStartWith, "weather: weather of a city, args: ")
			convey.So(s, convey.ShouldContainSubstring, `"city"`)
		})
	})
}
