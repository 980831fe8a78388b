package validation

// Schema names accepted by Validator.Validate.
const (
	SchemaRecommendationRequest = "recommendation-request"
	SchemaRecommendMentorsJob   = "recommend-mentors-job"
	SchemaCalculateScoreJob     = "calculate-match-score-job"
)

const userSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "guidanceState": {
      "type": ["object", "null"],
      "properties": {
        "primaryFocusAreas": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "area": {"type": "string"},
              "status": {"type": "string"}
            }
          }
        }
      }
    },
    "clinicalProfile": {
      "type": ["object", "null"],
      "properties": {
        "primaryIcuType": {"type": ["string", "null"]}
      }
    },
    "targetPrograms": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "program": {
            "type": ["object", "null"],
            "properties": {"name": {"type": ["string", "null"]}}
          }
        }
      }
    }
  }
}`

const providerSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "status": {"type": "string"},
    "isPaused": {"type": "boolean"},
    "availableThisWeek": {"type": "boolean"},
    "nextAvailableSlot": {"type": ["string", "null"], "format": "date-time"},
    "rating": {"type": "number", "minimum": 0, "maximum": 5},
    "previousIcuType": {"type": ["string", "null"]},
    "program": {"type": ["string", "null"]},
    "programName": {"type": ["string", "null"]},
    "specializations": {"type": ["array", "null"], "items": {"type": "string"}},
    "totalBookings": {"type": "integer", "minimum": 0},
    "responseTimeMinutes": {"type": ["integer", "null"], "minimum": 0}
  }
}`

const optionsSchema = `{
  "type": ["object", "null"],
  "properties": {
    "limit": {"type": "integer", "minimum": 1, "maximum": 100},
    "context": {"type": "string", "enum": ["general", "programs", "school", "dashboard"]}
  },
  "additionalProperties": false
}`

var builtinSchemas = map[string]string{
	SchemaRecommendationRequest: `{
  "type": "object",
  "required": ["user"],
  "properties": {
    "user": ` + userSchema + `,
    "providers": {"type": ["array", "null"], "items": ` + providerSchema + `},
    "options": ` + optionsSchema + `
  }
}`,

	SchemaRecommendMentorsJob: `{
  "type": "object",
  "anyOf": [
    {"required": ["userId"]},
    {"required": ["user"]}
  ],
  "properties": {
    "userId": {"type": "string", "minLength": 1},
    "user": ` + userSchema + `,
    "providers": {"type": ["array", "null"], "items": ` + providerSchema + `},
    "options": ` + optionsSchema + `
  }
}`,

	SchemaCalculateScoreJob: `{
  "type": "object",
  "anyOf": [
    {"required": ["providerId"]},
    {"required": ["provider"]}
  ],
  "properties": {
    "userId": {"type": "string"},
    "providerId": {"type": "string", "minLength": 1},
    "user": {"oneOf": [` + userSchema + `, {"type": "null"}]},
    "provider": ` + providerSchema + `,
    "context": {"type": "string", "enum": ["general", "programs", "school", "dashboard"]}
  }
}`,
}
