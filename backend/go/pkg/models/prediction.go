package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FeatureNames lists the 21 clinical measurements, in the order clients send them.
var FeatureNames = []string{
	"Age",
	"BMI",
	"BMI_Category",
	"DiastolicBP",
	"BP_Risk",
	"BodyTemp",
	"HeartRate",
	"Hematocrit",
	"Anemia_Risk",
	"SerumCreatinine",
	"WBC",
	"USG_AC",
	"USG_BPD",
	"USG_FL",
	"Fetal_Growth_Stress",
	"GestationalAge_Weeks",
	"Trimester",
	"OGTT_Fasting",
	"OGTT_1hr",
	"OGTT_2hr",
	"Metabolic_Risk",
}

// FeatureVector is the ordered list of numeric or boolean values sent for one prediction.
type FeatureVector []interface{}

// NumericOrBool reports the index of the first element that is neither a number nor a
// boolean, or -1 when every element is.
func (f FeatureVector) NumericOrBool() int {
	for i, v := range f {
		switch v.(type) {
		case float64, float32, int, int32, int64, bool, json.Number:
		default:
			return i
		}
	}
	return -1
}

// PredictionOutcome is the oracle's verdict, passed back to the caller untouched.
type PredictionOutcome struct {
	Prediction interface{} `json:"prediction"`
	Result     string      `json:"result"`
}

// Label renders the prediction as the string the store persists.
func (o PredictionOutcome) Label() string {
	switch v := o.Prediction.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// PredictionRecord is one persisted input/output pair. Records are append-only.
type PredictionRecord struct {
	ID         string        `bson:"_id" json:"_id"`
	Features   FeatureVector `bson:"features" json:"features"`
	Prediction string        `bson:"prediction" json:"prediction"`
	Result     string        `bson:"result" json:"result"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}
