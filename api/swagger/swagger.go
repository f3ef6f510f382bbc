package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Grading API",
        "description": "Grading and ranking engine for subject results",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Marks", "description": "Mark component recording and derived results"},
        {"name": "Weights", "description": "Shared component weight configuration"},
        {"name": "GradeBands", "description": "Letter grade band table"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/marks": {
            "post": {
                "tags": ["Marks"],
                "summary": "Record or replace a mark component and recompute the student result",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or raw marks"},
                    "409": {"description": "Group busy"},
                    "412": {"description": "Weight configuration missing"}
                }
            },
            "get": {
                "tags": ["Marks"],
                "summary": "Get a student subject result with raw mark breakdown",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "required": true},
                    {"name": "subjectId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "academicYearId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No result for scope"}
                }
            },
            "delete": {
                "tags": ["Marks"],
                "summary": "Delete a mark component and recompute the group",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "required": true},
                    {"name": "subjectId", "in": "query", "type": "string", "required": true},
                    {"name": "classId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "academicYearId", "in": "query", "type": "string", "required": true},
                    {"name": "componentType", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Component not found"}
                }
            }
        },
        "/marks/recalculate": {
            "post": {
                "tags": ["Marks"],
                "summary": "Re-aggregate and rerank a whole class+subject+term+year group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GroupKey"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Group busy"}
                }
            }
        },
        "/results": {
            "get": {
                "tags": ["Marks"],
                "summary": "List ranked results for a group",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string", "required": true},
                    {"name": "subjectId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "academicYearId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weights": {
            "get": {
                "tags": ["Weights"],
                "summary": "Get the active component weights",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Weights not configured"}
                }
            },
            "put": {
                "tags": ["Weights"],
                "summary": "Replace the component weights",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveWeightsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Weights invalid"}
                }
            }
        },
        "/grade-bands": {
            "get": {
                "tags": ["GradeBands"],
                "summary": "List configured grade bands",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["GradeBands"],
                "summary": "Replace the grade band table",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveGradeBandsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Band table invalid"}
                }
            }
        }
    },
    "definitions": {
        "RecordMarkRequest": {
            "type": "object",
            "required": ["student_id", "subject_id", "class_id", "term_id", "academic_year_id", "component_type", "raw_marks"],
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "term_id": {"type": "string"},
                "academic_year_id": {"type": "string"},
                "component_type": {"type": "string", "enum": ["midterm", "class_score", "exam_score"]},
                "raw_marks": {"type": "array", "items": {"type": "number"}}
            }
        },
        "GroupKey": {
            "type": "object",
            "required": ["class_id", "subject_id", "term_id", "academic_year_id"],
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "term_id": {"type": "string"},
                "academic_year_id": {"type": "string"}
            }
        },
        "SaveWeightsRequest": {
            "type": "object",
            "required": ["midterm_weight", "class_weight", "exam_weight"],
            "properties": {
                "midterm_weight": {"type": "integer"},
                "class_weight": {"type": "integer"},
                "exam_weight": {"type": "integer"}
            }
        },
        "SaveGradeBandsRequest": {
            "type": "object",
            "required": ["bands"],
            "properties": {
                "bands": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeBandRequest"}
                }
            }
        },
        "GradeBandRequest": {
            "type": "object",
            "required": ["min_mark", "max_mark", "letter"],
            "properties": {
                "min_mark": {"type": "integer"},
                "max_mark": {"type": "integer"},
                "letter": {"type": "string"},
                "remark": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
