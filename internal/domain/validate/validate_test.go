package validate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/glyco/internal/domain/features"
	"github.com/okian/glyco/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func validRaw() map[string]string {
	return map[string]string{
		"height_cm":            "170",
		"weight_kg":            "70",
		"HighBP":               "1",
		"HighChol":             "0",
		"GenHlth":              "2",
		"PhysHlth":             "0",
		"DiffWalk":             "0",
		"HeartDiseaseorAttack": "0",
		"PhysActivity":         "1",
		"Gender":               "1",
		"Age":                  "7",
	}
}

func fieldErrors(err error) validate.Errors {
	var errs validate.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	return errs
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fully valid request", t, func() {
		raw := validRaw()

		Convey("When validating", func() {
			in, err := validate.Validate(ctx, raw)

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
			})

			Convey("And BMI should be derived and rounded to one decimal", func() {
				// 70 / 1.70^2 = 24.221... -> 24.2
				So(in.BMI, ShouldEqual, 24.2)
			})

			Convey("And the typed fields should carry the coerced values", func() {
				So(in.HeightCM, ShouldEqual, 170)
				So(in.WeightKG, ShouldEqual, 70)
				So(in.HighBP, ShouldEqual, 1)
				So(in.Age, ShouldEqual, 7)
			})

			Convey("And Values should cover every selected feature", func() {
				values := in.Values()
				for _, name := range features.Selected {
					_, ok := values[name]
					So(ok, ShouldBeTrue)
				}
				So(values["height_cm"], ShouldEqual, 170)
				So(values["weight_kg"], ShouldEqual, 70)
			})
		})
	})

	Convey("Given integer fields written as floats", t, func() {
		raw := validRaw()
		raw["HighBP"] = "1.0"
		raw["Age"] = "7.0"

		Convey("When validating", func() {
			in, err := validate.Validate(ctx, raw)

			Convey("Then float-then-truncate coercion should accept them", func() {
				So(err, ShouldBeNil)
				So(in.HighBP, ShouldEqual, 1)
				So(in.Age, ShouldEqual, 7)
			})
		})
	})

	Convey("Given missing fields", t, func() {
		raw := validRaw()
		delete(raw, "GenHlth")
		raw["Gender"] = "   "

		Convey("When validating", func() {
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)

			Convey("Then exactly one error per missing field should be reported", func() {
				So(errs, ShouldHaveLength, 2)
				fields := []string{errs[0].Field, errs[1].Field}
				So(fields, ShouldContain, "GenHlth")
				So(fields, ShouldContain, "Gender")
			})
		})
	})

	Convey("Given an unparsable value", t, func() {
		raw := validRaw()
		raw["weight_kg"] = "heavy"

		Convey("When validating", func() {
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)

			Convey("Then only the bad field should be flagged", func() {
				So(errs, ShouldHaveLength, 1)
				So(errs[0].Field, ShouldEqual, "weight_kg")
				So(errs[0].Message, ShouldContainSubstring, "invalid value")
			})
		})
	})

	Convey("Given height boundary values", t, func() {
		cases := map[string]bool{
			"90":     true,
			"230":    true,
			"89.99":  false,
			"230.01": false,
		}
		for rawHeight, ok := range cases {
			raw := validRaw()
			raw["height_cm"] = rawHeight
			_, err := validate.Validate(ctx, raw)
			if ok {
				So(err, ShouldBeNil)
			} else {
				So(fieldErrors(err), ShouldHaveLength, 1)
				So(fieldErrors(err)[0].Field, ShouldEqual, "height_cm")
			}
		}
	})

	Convey("Given an out-of-range weight", t, func() {
		raw := validRaw()
		raw["weight_kg"] = "500"

		Convey("When validating", func() {
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)

			Convey("Then the weight range error should be the only one", func() {
				So(errs, ShouldHaveLength, 1)
				So(errs[0].Field, ShouldEqual, "weight_kg")
				So(errs[0].Message, ShouldContainSubstring, "between 25 and 220")
			})
		})
	})

	Convey("Given multiple violations at once", t, func() {
		raw := validRaw()
		raw["weight_kg"] = "500"
		raw["Age"] = "99"
		delete(raw, "HighChol")

		Convey("When validating", func() {
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)

			Convey("Then all of them should be accumulated in one batch", func() {
				So(errs, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given coded category bounds", t, func() {
		for field, bad := range map[string]string{
			"Age":      "14",
			"GenHlth":  "6",
			"PhysHlth": "31",
		} {
			raw := validRaw()
			raw[field] = bad
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Field, ShouldEqual, field)
		}
	})

	Convey("Given measurements that produce an implausible BMI", t, func() {
		raw := validRaw()
		raw["height_cm"] = "230"
		raw["weight_kg"] = "25"

		Convey("When validating", func() {
			_, err := validate.Validate(ctx, raw)
			errs := fieldErrors(err)

			Convey("Then the derived-value error should carry the computed BMI", func() {
				// 25 / 2.30^2 = 4.7
				So(errs, ShouldHaveLength, 1)
				So(errs[0].Field, ShouldEqual, "BMI")
				So(errs[0].Message, ShouldContainSubstring, "4.7")
			})
		})
	})
}
