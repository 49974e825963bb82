package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/twitter/testsched/common/stats"
)

/*
add new Checker functions here as needed
*/

/*
returns true if the rendered number a equals the int b
*/
func IntEqTest(a, b interface{}) bool {
	if b == nil && a == nil {
		return true
	}
	aflt, ok := a.(float64)
	if !ok {
		return false
	}
	return aflt == float64(b.(int))
}

/*
returns true if the rendered number a is greater than the int b
*/
func IntGTTest(a, b interface{}) bool {
	aflt, ok := a.(float64)
	if !ok {
		return false
	}
	return aflt > float64(b.(int))
}

func DoesNotExist(a, b interface{}) bool {
	return a == nil
}

/*
defines the condition checker to use to validate the measurement.  Each Checker(a, b) implementation
will expect a to be the 'got' value and b to be the 'expected' value.
*/
type Rule struct {
	Checker func(interface{}, interface{}) bool
	Value   interface{}
}

/*
Verify that the rendered stats contain values for the keys in the contains map parameter and that
each entry conforms to the rule (condition) associated with that key. The checked value of a
counter or a latency is its count, of a gauge its value.
*/
func VerifyStats(stat stats.StatsReceiver, t *testing.T, contains map[string]Rule) {
	rendered := map[string]map[string]interface{}{}
	if err := json.Unmarshal(stat.Render(false), &rendered); err != nil {
		t.Errorf("stats render is not valid json: %v", err)
		return
	}

	failed := false
	var msg bytes.Buffer
	msg.WriteString("stats registry error:\n")

	for key, rule := range contains {
		checkerName := runtime.FuncForPC(reflect.ValueOf(rule.Checker).Pointer()).Name()
		fields, ok := rendered[key]
		if !ok {
			if !strings.Contains(checkerName, "DoesNotExist") {
				failed = true
				msg.WriteString(fmt.Sprintf("%s: no stat entry, and checker:%s\n", key, checkerName))
			}
			continue
		}
		gotValue, ok := fields["count"]
		if !ok {
			gotValue = fields["value"]
		}
		if rule.Checker != nil && !rule.Checker(gotValue, rule.Value) {
			failed = true
			msg.WriteString(fmt.Sprintf("%s: got %v, expected to pass %s with %v\n", key, gotValue, checkerName, rule.Value))
		}
	}
	if failed {
		t.Error(msg.String())
	}
}
