// Package planmetrics converts EXPLAIN ANALYZE plan text into a
// model.PlanNode tree, then walks that tree (plus the tabular EXPLAIN
// rows) into the closed Metrics dictionary every downstream analyzer
// reads.
package planmetrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

var (
	reCostRows  = regexp.MustCompile(`\(cost=([\d.]+)(?:\s+rows=([\d.]+))?\)`)
	reActual    = regexp.MustCompile(`\(actual time=([\d.]+)\.\.([\d.]+)\s+rows=(\d+)\s+loops=(\d+)\)`)
	reTableName = regexp.MustCompile("(?i)\\bon\\s+`?([a-zA-Z_][a-zA-Z0-9_$]*)`?")
	reIndexName = regexp.MustCompile("(?i)using\\s+(?:index\\s+)?`?([a-zA-Z_][a-zA-Z0-9_$]*)`?")
)

// ParsePlan builds a PlanNode tree from EXPLAIN ANALYZE's indented
// "-> operation (cost=… rows=…) (actual time=a..b rows=r loops=l)" text.
// driver classifies each node's operation verb into the canonical
// access-type enum.
func ParsePlan(text string, driver dbdriver.Driver) (*model.PlanNode, error) {
	type frame struct {
		indent int
		node   *model.PlanNode
	}
	var stack []frame
	var root *model.PlanNode

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingSpaces(line)
		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "-> ") {
			continue
		}
		node := parseNodeLine(strings.TrimPrefix(trimmed, "-> "), driver)

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			root = node
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, frame{indent: indent, node: node})
	}

	if root == nil {
		return nil, fmt.Errorf("planmetrics: no plan nodes found in EXPLAIN ANALYZE text")
	}
	return root, nil
}

func leadingSpaces(s string) int {
	n := 0
	for _, c := range s {
		if c != ' ' {
			break
		}
		n++
	}
	return n
}

func parseNodeLine(content string, driver dbdriver.Driver) *model.PlanNode {
	operation := content
	if i := strings.Index(operation, " (cost="); i >= 0 {
		operation = operation[:i]
	} else if i := strings.Index(operation, " (actual time="); i >= 0 {
		operation = operation[:i]
	}
	operation = strings.TrimSpace(operation)

	node := &model.PlanNode{Operation: operation}

	if m := reCostRows.FindStringSubmatch(content); m != nil {
		if cost, err := strconv.ParseFloat(m[1], 64); err == nil {
			node.EstimatedCost = &cost
		}
		if m[2] != "" {
			if rows, err := strconv.ParseFloat(m[2], 64); err == nil {
				ir := int64(rows)
				node.EstimatedRows = &ir
			}
		}
	}
	if m := reActual.FindStringSubmatch(content); m != nil {
		start, _ := strconv.ParseFloat(m[1], 64)
		end, _ := strconv.ParseFloat(m[2], 64)
		rows, _ := strconv.ParseInt(m[3], 10, 64)
		loops, _ := strconv.ParseInt(m[4], 10, 64)
		node.ActualTimeStart = &start
		node.ActualTimeEnd = &end
		node.ActualRows = &rows
		node.Loops = &loops
	}
	if m := reTableName.FindStringSubmatch(operation); m != nil {
		node.Table = m[1]
	}
	if m := reIndexName.FindStringSubmatch(operation); m != nil {
		node.Index = m[1]
	}
	if driver != nil {
		node.AccessType = driver.NormalizeAccessType(operation)
	}

	return node
}
