package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aide-systems/aide-core/internal/models"
)

// NormalizeResponse maps an automation engine reply onto the structured chat
// response. Non-JSON bodies become the text of the response.
func NormalizeResponse(raw []byte) *models.StructuredChatResponse {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil || dec.More() {
		return models.NewStructuredChatResponse(string(raw))
	}

	switch x := v.(type) {
	case map[string]interface{}:
		return normalizeObject(x)
	case []interface{}:
		if len(x) > 0 {
			if obj, ok := x[0].(map[string]interface{}); ok {
				return normalizeObject(obj)
			}
		}
	case string:
		return models.NewStructuredChatResponse(x)
	}
	return models.NewStructuredChatResponse(string(raw))
}

func normalizeObject(m map[string]interface{}) *models.StructuredChatResponse {
	r := models.NewStructuredChatResponse(stringField(m, "text"))
	if r.Text == "" {
		r.Text = stringField(m, "output")
	}

	if rows, ok := m["tables"].([]interface{}); ok {
		for _, row := range rows {
			if obj, ok := row.(map[string]interface{}); ok {
				r.Tables = append(r.Tables, obj)
			}
		}
	}

	if cols, ok := m["columns"].([]interface{}); ok {
		for _, col := range cols {
			if s, ok := col.(string); ok {
				r.Columns = append(r.Columns, s)
			} else if col != nil {
				r.Columns = append(r.Columns, fmt.Sprint(col))
			}
		}
	}

	if _, ok := m["query"]; ok {
		r.SQLQuery = stringField(m, "query")
	} else {
		r.SQLQuery = stringField(m, "sql_query")
	}

	switch viz := m["visualization"].(type) {
	case map[string]interface{}:
		r.Visualization = viz
	case string:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(viz), &parsed); err == nil {
			r.Visualization = parsed
		}
	}

	return r
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
