package analytics

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// The analytics wire shapes are parallel arrays and fixed-key maps, encoded
// and decoded by hand with jx so revenue decimals survive the round trip
// without a float64 detour.

// EncodeSeries writes the {dates, order_counts, revenue_data} object.
func EncodeSeries(e *jx.Encoder, s Series) {
	e.ObjStart()
	encodeSeriesFields(e, s)
	e.ObjEnd()
}

func encodeSeriesFields(e *jx.Encoder, s Series) {
	e.FieldStart("dates")
	e.ArrStart()
	for _, d := range s.Dates {
		e.Str(d)
	}
	e.ArrEnd()

	e.FieldStart("order_counts")
	e.ArrStart()
	for _, c := range s.OrderCounts {
		e.Int(c)
	}
	e.ArrEnd()

	e.FieldStart("revenue_data")
	e.ArrStart()
	for _, r := range s.Revenue {
		e.Num(jx.Num(r.String()))
	}
	e.ArrEnd()
}

// EncodeDistribution writes a category→percentage object with a stable key
// order.
func EncodeDistribution(e *jx.Encoder, d Distribution, keys []string) {
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		e.Float64(d[k])
	}
	e.ObjEnd()
}

// EncodeSummary writes the combined summary object: the series fields plus
// both distributions.
func EncodeSummary(e *jx.Encoder, s *Summary) {
	e.ObjStart()
	encodeSeriesFields(e, s.Series)
	e.FieldStart("payment_method_distribution")
	e.ObjStart()
	for _, k := range MethodKeys {
		e.FieldStart(k)
		e.Float64(s.PaymentMethods[k])
	}
	e.ObjEnd()
	e.FieldStart("status_distribution")
	e.ObjStart()
	for _, k := range StatusKeys {
		e.FieldStart(k)
		e.Float64(s.Statuses[k])
	}
	e.ObjEnd()
	e.ObjEnd()
}

// MethodKeys and StatusKeys fix the category order on the wire.
var (
	MethodKeys = []string{"mobile", "card", "bank"}
	StatusKeys = []string{"paid", "pending", "failed"}
)

// DecodeSeries reads the {dates, order_counts, revenue_data} object.
func DecodeSeries(d *jx.Decoder) (Series, error) {
	var s Series
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		return decodeSeriesField(d, key, &s)
	}); err != nil {
		return Series{}, errors.Wrap(err, "decode series")
	}
	return s, nil
}

func decodeSeriesField(d *jx.Decoder, key string, s *Series) error {
	switch key {
	case "dates":
		return d.Arr(func(d *jx.Decoder) error {
			v, err := d.Str()
			if err != nil {
				return err
			}
			s.Dates = append(s.Dates, v)
			return nil
		})
	case "order_counts":
		return d.Arr(func(d *jx.Decoder) error {
			v, err := d.Int()
			if err != nil {
				return err
			}
			s.OrderCounts = append(s.OrderCounts, v)
			return nil
		})
	case "revenue_data":
		return d.Arr(func(d *jx.Decoder) error {
			n, err := d.Num()
			if err != nil {
				return err
			}
			v, err := decimal.NewFromString(n.String())
			if err != nil {
				return errors.Wrap(err, "parse revenue")
			}
			s.Revenue = append(s.Revenue, v)
			return nil
		})
	default:
		return d.Skip()
	}
}

// DecodeDistribution reads a flat category→percentage object.
func DecodeDistribution(d *jx.Decoder) (Distribution, error) {
	dist := Distribution{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		v, err := d.Float64()
		if err != nil {
			return err
		}
		dist[key] = v
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode distribution")
	}
	return dist, nil
}

// DecodeSummary reads the combined summary object.
func DecodeSummary(d *jx.Decoder) (*Summary, error) {
	var s Summary
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "payment_method_distribution":
			dist, err := DecodeDistribution(d)
			if err != nil {
				return err
			}
			s.PaymentMethods = dist
			return nil
		case "status_distribution":
			dist, err := DecodeDistribution(d)
			if err != nil {
				return err
			}
			s.Statuses = dist
			return nil
		default:
			return decodeSeriesField(d, key, &s.Series)
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode summary")
	}
	return &s, nil
}
