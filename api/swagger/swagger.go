package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Madrasa Admission API",
        "description": "Admission workflow engine and session renewals",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Admissions", "description": "Admission application workflow"},
        {"name": "Renewals", "description": "Session renewal workflow"},
        {"name": "Students", "description": "Student roster reads"}
    ],
    "paths": {
        "/admissions": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Submit an admission application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Admissions"],
                "summary": "List admission applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "required_class", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/status/{number}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Check application status",
                "parameters": [
                    {"name": "number", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DisplayStatus"}}
                }
            }
        },
        "/admissions/export": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Export applications as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV content"}
                }
            }
        },
        "/admissions/{id}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Get application detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/{id}/approve": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Approve a pending application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/reject": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Reject a pending application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/quran-test": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Record the Quran test result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TestResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/oral-test": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Record the oral test result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TestResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/written-admit": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Admit the candidate to the written test",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/written-test": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Record the written test result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TestResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/fully-approve": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Convert a written-test passer into a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already converted"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/admissions/{id}/admit-card": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Download the written-test admit card",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF content"},
                    "422": {"description": "Not admitted to the written test"}
                }
            }
        },
        "/renewals": {
            "post": {
                "tags": ["Renewals"],
                "summary": "Submit a renewal application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRenewalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Renewals"],
                "summary": "List renewal applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "session_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/renewals/students/{rollNumber}": {
            "get": {
                "tags": ["Renewals"],
                "summary": "Look up a student for the renewal form",
                "parameters": [
                    {"name": "rollNumber", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/renewals/{id}": {
            "get": {
                "tags": ["Renewals"],
                "summary": "Get renewal detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/renewals/{id}/resolve": {
            "patch": {
                "tags": ["Renewals"],
                "summary": "Approve or reject a renewal application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveRenewalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitApplicationRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "birth_date": {"type": "string", "format": "date-time"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "guardian_name": {"type": "string"},
                "guardian_phone": {"type": "string"},
                "required_class": {"type": "string"},
                "accommodation_type": {"type": "string", "enum": ["DAY", "BOARDING"]},
                "photo_key": {"type": "string"},
                "birth_certificate_key": {"type": "string"},
                "transcript_key": {"type": "string"}
            },
            "required": ["full_name", "gender", "birth_date", "phone", "email", "address", "guardian_name", "guardian_phone", "required_class", "accommodation_type"]
        },
        "TestResultRequest": {
            "type": "object",
            "properties": {
                "passed": {"type": "boolean"},
                "marks": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["passed"]
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "SubmitRenewalRequest": {
            "type": "object",
            "properties": {
                "roll_number": {"type": "string"},
                "academic_session_id": {"type": "string"},
                "class_id": {"type": "string"},
                "section_id": {"type": "string"},
                "contact_override": {"type": "string"},
                "address_override": {"type": "string"}
            },
            "required": ["roll_number", "academic_session_id", "class_id", "section_id"]
        },
        "ResolveRenewalRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "reason": {"type": "string"}
            },
            "required": ["approve"]
        },
        "DisplayStatus": {
            "type": "object",
            "properties": {
                "application_number": {"type": "string"},
                "label": {"type": "string"},
                "reason": {"type": "string"},
                "timeline": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimelineStep"}
                }
            }
        },
        "TimelineStep": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "label": {"type": "string"},
                "state": {"type": "string", "enum": ["completed", "pending", "rejected"]}
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
