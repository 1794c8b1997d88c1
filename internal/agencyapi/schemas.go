package agencyapi

import "agency-workers/internal/common/validation"

// Only the fields the workers rely on are pinned down. Everything else is
// left open so that backend additions do not break decoding.

var (
	idString  = validation.Type("string")
	optString = validation.Type("string", "null")
	// ref fields are either a bare id or a populated object
	refField = map[string]interface{}{
		"anyOf": []interface{}{
			validation.Type("string"),
			validation.Type("object"),
			validation.Type("null"),
		},
	}
)

func withID(required []string, props map[string]interface{}) map[string]interface{} {
	if props == nil {
		props = map[string]interface{}{}
	}
	props["_id"] = idString
	return validation.Object(append([]string{"_id"}, required...), props)
}

var (
	studentItem = withID(nil, map[string]interface{}{
		"firstName":     optString,
		"lastName":      optString,
		"collegeRoll":   optString,
		"applications":  validation.Type("array", "null"),
		"accounts":      validation.Type("array", "null"),
		"agentPayments": validation.Type("array", "null"),
	})

	courseRelationItem = withID(nil, map[string]interface{}{
		"institute":            refField,
		"course":               refField,
		"term":                 refField,
		"local_amount":         validation.Numeric(),
		"international_amount": validation.Numeric(),
		"years":                validation.Type("array", "null"),
	})

	agentCourseItem = withID(nil, map[string]interface{}{
		"agentId":          refField,
		"courseRelationId": refField,
		"year":             validation.Type("array", "null"),
	})

	namedItem = withID(nil, map[string]interface{}{
		"name": optString,
	})

	termItem = withID(nil, map[string]interface{}{
		"term": optString,
	})

	academicYearItem = validation.Object([]string{"id"}, map[string]interface{}{
		"id":            idString,
		"academic_year": optString,
	})

	invoiceItem = withID(nil, map[string]interface{}{
		"reference":   optString,
		"status":      optString,
		"totalAmount": validation.Numeric(),
		"students":    validation.Type("array", "null"),
		"customer":    refField,
		"bank":        refField,
	})

	remitItem = withID(nil, map[string]interface{}{
		"reference":   optString,
		"status":      optString,
		"totalAmount": validation.Numeric(),
		"students":    validation.Type("array", "null"),
		"remitTo":     refField,
	})

	rollUploadItem = withID(nil, map[string]interface{}{
		"studentData": validation.ArrayOf(validation.Object([]string{"tempId"}, map[string]interface{}{
			"tempId":    idString,
			"studentId": refField,
		})),
	})
)

var (
	studentListSchema        = listSchema("students", studentItem)
	studentSchema            = itemSchema("student", studentItem)
	courseRelationListSchema = listSchema("course-relations", courseRelationItem)
	courseRelationSchema     = itemSchema("course-relation", courseRelationItem)
	agentCourseListSchema    = listSchema("agent-courses", agentCourseItem)
	namedListSchema          = listSchema("named", namedItem)
	termListSchema           = listSchema("terms", termItem)
	academicYearListSchema   = listSchema("academic-years", academicYearItem)
	invoiceListSchema        = listSchema("invoices", invoiceItem)
	invoiceSchema            = itemSchema("invoice", invoiceItem)
	remitSchema              = itemSchema("remit-invoice", remitItem)
	rollUploadListSchema     = listSchema("csv", rollUploadItem)
	rollUploadSchema         = itemSchema("csv", rollUploadItem)
)
