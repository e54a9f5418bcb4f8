package classify_test

import (
	"context"
	"testing"

	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/classify"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKeywordClassifier_Predict(t *testing.T) {
	Convey("Given the default keyword classifier", t, func() {
		c := classify.NewKeywordClassifier()
		ctx := context.Background()

		Convey("When classifying an API failure report", func() {
			cat, err := c.Predict(ctx, "API returns 500 on update")
			So(err, ShouldBeNil)
			So(cat, ShouldEqual, category.API)
		})

		Convey("When classifying reports across domains", func() {
			cases := map[string]category.Category{
				"login fails after password reset, session token expired": category.Authentication,
				"slow query causes high latency on the reports database":  category.Database,
				"docker build breaks the ci pipeline on deploy":           category.DevOps,
				"typo in the readme documentation":                        category.Documentation,
				"memory leak causes high cpu and slow responses":          category.Performance,
				"xss vulnerability allows script injection":               category.Security,
				"flaky test with broken coverage assertion":               category.Testing,
				"button layout breaks on the settings screen":             category.UI,
			}
			for text, want := range cases {
				got, err := c.Predict(ctx, text)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("When the same text is classified twice", func() {
			first, err1 := c.Predict(ctx, "session token leak in the api test")
			second, err2 := c.Predict(ctx, "session token leak in the api test")
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(first, ShouldEqual, second)
		})

		Convey("When no keyword matches", func() {
			cat, err := c.Predict(ctx, "something completely unrelated happened")
			So(err, ShouldBeNil)
			So(cat, ShouldEqual, category.API) // default fallback
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.Predict(canceled, "api broke")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a classifier with a custom fallback", t, func() {
		c := classify.NewKeywordClassifier(classify.WithFallback(category.Documentation))

		Convey("Then unmatched text falls back to it", func() {
			cat, err := c.Predict(context.Background(), "nothing matches here")
			So(err, ShouldBeNil)
			So(cat, ShouldEqual, category.Documentation)
		})
	})

	Convey("Given a classifier with no usable rules", t, func() {
		c := classify.NewKeywordClassifier(classify.WithRules(map[category.Category][]string{}))

		Convey("Then Predict surfaces unavailability instead of guessing", func() {
			_, err := c.Predict(context.Background(), "api broke")
			So(err, ShouldWrap, classify.ErrUnavailable)
		})
	})
}

func TestKeywordClassifier_Hits(t *testing.T) {
	Convey("Given the default classifier", t, func() {
		c := classify.NewKeywordClassifier()

		Convey("When counting hits", func() {
			hits := c.Hits("the api endpoint test")

			Convey("Then whole tokens count and substrings do not", func() {
				So(hits[category.API], ShouldEqual, 2)
				So(hits[category.Testing], ShouldEqual, 1)
				// "ui" must not fire inside other words.
				uiHits := c.Hits("please rebuild the guide")
				So(uiHits[category.UI], ShouldEqual, 0)
			})
		})
	})
}
