/*
Copyright 2025-2026 the Bellhop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

const dateFormat = "2006-01-02"

var placeholderRegex = regexp.MustCompile(`\$\{([a-zA-Z0-9_]+(?:[+-][0-9]+)?)\}`)

// vars carries values captured by earlier steps into later requests and
// expectations.
type vars map[string]interface{}

// resolve looks a placeholder name up, falling back to the built-ins: uuid
// for a fresh random ID, today and today+N for booking dates.
func (v vars) resolve(name string) (interface{}, error) {
	if value, ok := v[name]; ok {
		return value, nil
	}

	switch {
	case name == "uuid":
		return booking.GenerateTestID(), nil
	case name == "today":
		return time.Now().Format(dateFormat), nil
	case strings.HasPrefix(name, "today+"), strings.HasPrefix(name, "today-"):
		offset, err := strconv.Atoi(strings.TrimPrefix(name, "today"))
		if err != nil {
			return nil, fmt.Errorf("bad date offset in placeholder %q", name)
		}

		return time.Now().AddDate(0, 0, offset).Format(dateFormat), nil
	}

	return nil, fmt.Errorf("unknown placeholder %q", name)
}

// expandString replaces every ${name} in s. A string that is exactly one
// placeholder keeps the captured value's type, so a numeric booking ID can
// flow into a JSON body without turning into a string.
func (v vars) expandString(s string) (interface{}, error) {
	if match := placeholderRegex.FindStringSubmatch(s); match != nil && match[0] == s {
		return v.resolve(match[1])
	}

	var expandErr error

	out := placeholderRegex.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderRegex.FindStringSubmatch(m)[1]

		value, err := v.resolve(name)
		if err != nil {
			expandErr = err

			return m
		}

		return fmt.Sprint(value)
	})

	if expandErr != nil {
		return nil, expandErr
	}

	return out, nil
}

// expandText is expandString for places that must stay text, paths and query
// values.
func (v vars) expandText(s string) (string, error) {
	value, err := v.expandString(s)
	if err != nil {
		return "", err
	}

	if text, ok := value.(string); ok {
		return text, nil
	}

	return fmt.Sprint(value), nil
}

// expandBody walks a decoded JSON document expanding every string in it.
func (v vars) expandBody(body interface{}) (interface{}, error) {
	switch value := body.(type) {
	case string:
		return v.expandString(value)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))

		for key, item := range value {
			expanded, err := v.expandBody(item)
			if err != nil {
				return nil, err
			}

			out[key] = expanded
		}

		return out, nil
	case []interface{}:
		out := make([]interface{}, len(value))

		for i, item := range value {
			expanded, err := v.expandBody(item)
			if err != nil {
				return nil, err
			}

			out[i] = expanded
		}

		return out, nil
	default:
		return body, nil
	}
}
