package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Link  *string `json:"link" validate:"omitempty,url"`
	Price *string `json:"price" validate:"omitempty,money"`
	Date  *string `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
}

func strPtr(s string) *string { return &s }

func TestValidate_UsesJSONNames(t *testing.T) {
	errs := Validate(&sample{
		Link:  strPtr("not a url"),
		Price: strPtr("1.234"),
		Date:  strPtr("15/01/2024"),
	})

	require.NotNil(t, errs)
	assert.Equal(t, []string{"This field is required."}, errs["name"])
	assert.Equal(t, []string{"Enter a valid URL."}, errs["link"])
	assert.Contains(t, errs["price"][0], "decimal places")
	assert.Contains(t, errs["purchase_date"][0], "YYYY-MM-DD")
	assert.Equal(t, []string{"link", "name", "price", "purchase_date"}, errs.Fields())
}

func TestValidate_EmptyOptionalsPass(t *testing.T) {
	errs := Validate(&sample{Name: "ok", Link: strPtr(""), Price: strPtr(""), Date: strPtr("  ")})
	assert.Nil(t, errs)
}

func TestValidate_BlankOptionalsLeaveInputUntouched(t *testing.T) {
	in := &sample{Name: "ok", Link: strPtr(""), Date: strPtr("bad")}
	errs := Validate(in)

	require.NotNil(t, errs)
	assert.NotContains(t, errs, "link")
	assert.Contains(t, errs, "purchase_date")
	require.NotNil(t, in.Link)
	assert.Equal(t, "", *in.Link)
}

func TestValidate_BlankAmountSkipsMoneyRule(t *testing.T) {
	type priced struct {
		Price Amount `json:"price" validate:"omitempty,money"`
	}
	var p priced
	require.NoError(t, json.Unmarshal([]byte(`{"price":""}`), &p))

	assert.Nil(t, Validate(&p))
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "999.99", want: "999.99"},
		{in: "949.9", want: "949.9"},
		{in: "12", want: "12"},
		{in: "1.50", want: "1.5"},
		{in: "0", want: "0"},
		{in: "99999999.99", want: "99999999.99"},
		{in: "100000000", wantErr: true},
		{in: "1.999", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseMoney(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
		})
	}
}

func TestFieldErrors_Merge(t *testing.T) {
	a := FieldErrors{"name": {"one"}}
	a.Merge(FieldErrors{"name": {"two"}, "price": {"three"}})

	assert.Equal(t, []string{"one", "two"}, a["name"])
	assert.True(t, a.Has("price"))
	assert.False(t, a.Has("url"))
}

type priced struct {
	Price Amount `json:"price" validate:"omitempty,money"`
}

func TestAmount_AcceptsStringsAndNumbers(t *testing.T) {
	cases := []struct {
		body    string
		raw     string
		set     bool
		null    bool
		invalid bool
	}{
		{body: `{"price":"999.99"}`, raw: "999.99", set: true},
		{body: `{"price":949.99}`, raw: "949.99", set: true},
		{body: `{"price":null}`, set: true, null: true},
		{body: `{"price":""}`, set: true},
		{body: `{}`},
		{body: `{"price":"9.999"}`, raw: "9.999", set: true, invalid: true},
		{body: `{"price":true}`, raw: "true", set: true, invalid: true},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			var p priced
			require.NoError(t, json.Unmarshal([]byte(tc.body), &p))
			assert.Equal(t, tc.raw, p.Price.Raw)
			assert.Equal(t, tc.set, p.Price.Set)
			assert.Equal(t, tc.null, p.Price.Null)

			errs := Validate(&p)
			if tc.invalid {
				assert.True(t, errs.Has("price"))
			} else {
				assert.Nil(t, errs)
			}
		})
	}
}
