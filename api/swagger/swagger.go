package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OBE Kurikulum API",
        "description": "Grading workbook service for outcome-based curriculum (CPL/CPMK/Sub-CPMK)",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Curriculum", "description": "Read-only curriculum data fetched from the CRUD backend"},
        {"name": "Workbook", "description": "Grading sessions: roster, weights, modes"},
        {"name": "Spreadsheet", "description": "Template, export and import of xlsx workbooks"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "List courses",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/refresh": {
            "post": {
                "tags": ["Curriculum"],
                "summary": "Re-fetch curriculum from the backend",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{courseCode}": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "Get one course",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{courseCode}/structure": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "Get the CPL/CPMK structure reachable from a course",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/grade-scale": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "Get the institutional grade scale",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks": {
            "get": {
                "tags": ["Workbook"],
                "summary": "List opened courses, most recent first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}": {
            "post": {
                "tags": ["Workbook"],
                "summary": "Open or create the grading session",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "get": {
                "tags": ["Workbook"],
                "summary": "Get the grading session",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Workbook"],
                "summary": "Delete the course's grading data",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/workbooks/{courseCode}/students": {
            "post": {
                "tags": ["Workbook"],
                "summary": "Append blank roster rows",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddStudentsRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/students/{studentKey}": {
            "patch": {
                "tags": ["Workbook"],
                "summary": "Patch one field of one roster row",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Workbook"],
                "summary": "Remove one roster row",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/weights": {
            "put": {
                "tags": ["Workbook"],
                "summary": "Write one weight-matrix cell",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetWeightRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/weights/summary": {
            "get": {
                "tags": ["Workbook"],
                "summary": "Per-node weight totals against the 100% target",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/assessment-types": {
            "put": {
                "tags": ["Workbook"],
                "summary": "Replace the active assessment-type set",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssessmentTypesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/info": {
            "put": {
                "tags": ["Workbook"],
                "summary": "Update session course metadata",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInfoRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/mode": {
            "put": {
                "tags": ["Workbook"],
                "summary": "Switch input mode (destructive, needs confirmation with data)",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SwitchModeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Confirmation required"}
                }
            }
        },
        "/workbooks/{courseCode}/statistics": {
            "get": {
                "tags": ["Workbook"],
                "summary": "Class summary statistics",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/template": {
            "get": {
                "tags": ["Spreadsheet"],
                "summary": "Download the pre-structured entry workbook",
                "parameters": [{"name": "courseCode", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "xlsx attachment"}}
            }
        },
        "/workbooks/{courseCode}/export": {
            "get": {
                "tags": ["Spreadsheet"],
                "summary": "Export the roster (xlsx, detail, report, csv, pdf)",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "file attachment"}}
            }
        },
        "/workbooks/{courseCode}/import": {
            "post": {
                "tags": ["Spreadsheet"],
                "summary": "Upload an xlsx score sheet and stage it for confirmation",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/workbooks/{courseCode}/import/confirm": {
            "post": {
                "tags": ["Spreadsheet"],
                "summary": "Apply a staged import, replacing the roster",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmImportRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "AddStudentsRequest": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "value": {"type": "string"},
                "score": {"type": "number"}
            }
        },
        "SetWeightRequest": {
            "type": "object",
            "properties": {
                "cpl": {"type": "string"},
                "cpmk": {"type": "string"},
                "sub_cpmk": {"type": "string"},
                "assessment_type": {"type": "string"},
                "value": {"type": "number"}
            }
        },
        "AssessmentTypesRequest": {
            "type": "object",
            "properties": {
                "types": {"type": "array", "items": {"type": "string"}},
                "comments": {"type": "object"}
            }
        },
        "CourseInfoRequest": {
            "type": "object",
            "properties": {
                "semester": {"type": "integer"},
                "tahun_ajaran": {"type": "string"},
                "kelas": {"type": "string"},
                "dosen": {"type": "string"}
            }
        },
        "SwitchModeRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string"},
                "confirm": {"type": "boolean"}
            }
        },
        "ConfirmImportRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"}
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
