package manager

import (
	"regexp"
	"strings"

	"mlserved/pkg/apidata"
)

var serviceNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// normalizeName lowercases and trims a service name; ok is false when the
// result is not a valid name.
func normalizeName(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	return n, serviceNameRe.MatchString(n)
}

// requestData builds the object handed to a backend's Train and Predict.
func requestData(params apidata.APIData, data []string) apidata.APIData {
	if params == nil {
		params = apidata.New()
	}
	if data == nil {
		data = []string{}
	}
	return apidata.APIData{"parameters": params, "data": data}
}
