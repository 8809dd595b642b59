package document

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/favbox/promptflow/components/document/parser"
)

func TestImplSpecificOpts(t *testing.T) {
	type implSpecificOptions struct {
		conf  string
		index int
	}

	withConf := func(conf string) func(o *implSpecificOptions) {
		return func(o *implSpecificOptions) {
			o.conf = conf
		}
	}

	withIndex := func(index int) func(o *implSpecificOptions) {
		return func(o *implSpecificOptions) {
			o.index = index
		}
	}

	convey.Convey("TestLoaderImplSpecificOpts", t, func() {
		opt1 := WrapLoaderImplSpecificOptFn(withConf("test_conf"))
		opt2 := WrapLoaderImplSpecificOptFn(withIndex(1))

		got := GetLoaderImplSpecificOptions(&implSpecificOptions{}, opt1, opt2)

		convey.So(got, convey.ShouldResemble, &implSpecificOptions{
			conf:  "test_conf",
			index: 1,
		})
	})

	convey.Convey("TestTransformerImplSpecificOpts", t, func() {
		opt1 := WrapTransformerImplSpecificOptFn(withConf("test_conf"))
		opt2 := WrapTransformerImplSpecificOptFn(withIndex(1))

		got := GetTransformerImplSpecificOptions(&implSpecificOptions{}, opt1, opt2)

		convey.So(got, convey.ShouldResemble, &implSpecificOptions{
			conf:  "test_conf",
			index: 1,
		})
	})

	convey.Convey("TestLoaderCommonOpts", t, func() {
		got := GetLoaderCommonOptions(nil, WithParserOptions(parser.WithURI("a.md")))
		convey.So(got.ParserOptions, convey.ShouldHaveLength, 1)
		convey.So(parser.GetCommonOptions(nil, got.ParserOptions...).URI, convey.ShouldEqual, "a.md")
	})
}
