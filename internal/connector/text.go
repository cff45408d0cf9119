package connector

import (
	"strconv"

	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
)

// TextInput passes raw strings through as prompts.
type TextInput struct{}

func (TextInput) Init(apidata.APIData) error { return nil }

// Transform returns the prompts in ad["data"] with positional ids.
func (TextInput) Transform(ad apidata.APIData) ([]string, []string, error) {
	data := ad.GetStrings("data")
	if len(data) == 0 {
		return nil, nil, mllib.ErrBadParam("no data provided")
	}
	ids := make([]string, len(data))
	for i := range data {
		ids[i] = strconv.Itoa(i)
	}
	return ids, data, nil
}

// TextOutput formats generated text.
type TextOutput struct{}

func (TextOutput) Init(apidata.APIData) error { return nil }

// Finalize writes one {uri, text} entry per generation into out.
func (TextOutput) Finalize(ids, texts []string, out apidata.APIData) {
	preds := make([]apidata.APIData, len(texts))
	for i, s := range texts {
		preds[i] = apidata.APIData{"uri": ids[i], "text": s}
	}
	out.Add("predictions", preds)
}
