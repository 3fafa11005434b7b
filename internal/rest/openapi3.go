package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 instantiates the OpenAPI specification for this service.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "TaskTrail API",
			Description: "REST API for tracking personal tasks and their labels",
			Version:     "0.1.0",
			License: &openapi3.License{
				Name: "MIT",
				URL:  "https://opensource.org/licenses/MIT",
			},
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://0.0.0.0:9234",
			},
		},
	}

	labelSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("color", openapi3.NewStringSchema())

	taskSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "in-progress", "completed")).
		WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
		WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
		WithProperty("created_at", openapi3.NewStringSchema().WithFormat("date-time")).
		WithProperty("updated_at", openapi3.NewStringSchema().WithFormat("date-time")).
		WithPropertyRef("labels", &openapi3.SchemaRef{
			Value: openapi3.NewArraySchema().WithItems(labelSchema),
		})

	swagger.Components = &openapi3.Components{
		Schemas: openapi3.Schemas{
			"Task":  &openapi3.SchemaRef{Value: taskSchema},
			"Label": &openapi3.SchemaRef{Value: labelSchema},
			"ErrorResponse": &openapi3.SchemaRef{
				Value: openapi3.NewObjectSchema().
					WithProperty("error", openapi3.NewStringSchema()),
			},
		},
		RequestBodies: openapi3.RequestBodies{
			"CreateTasksRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for creating a task.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("title", openapi3.NewStringSchema().WithMinLength(1)).
						WithProperty("description", openapi3.NewStringSchema()).
						WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "in-progress", "completed")).
						WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
						WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
						WithPropertyRef("labels", &openapi3.SchemaRef{
							Value: openapi3.NewArraySchema().WithItems(openapi3.NewInt64Schema()),
						})),
			},
			"UpdateTasksRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for updating a task, absent fields retain their previous value.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("title", openapi3.NewStringSchema()).
						WithProperty("description", openapi3.NewStringSchema()).
						WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "in-progress", "completed")).
						WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
						WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
						WithPropertyRef("labels", &openapi3.SchemaRef{
							Value: openapi3.NewArraySchema().WithItems(openapi3.NewInt64Schema()),
						})),
			},
			"CreateLabelsRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for creating a label.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
						WithProperty("color", openapi3.NewStringSchema())),
			},
			"UpdateLabelsRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for updating a label, at least one field is required.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("name", openapi3.NewStringSchema()).
						WithProperty("color", openapi3.NewStringSchema())),
			},
		},
		Responses: openapi3.Responses{
			"TaskResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("A task with its resolved labels.").
					WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/Task"})),
			},
			"TasksResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("A collection of tasks.").
					WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{
						Value: openapi3.NewArraySchema().WithItems(taskSchema),
					})),
			},
			"LabelResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("A label.").
					WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/Label"})),
			},
			"LabelsResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("A collection of labels sorted by name.").
					WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{
						Value: openapi3.NewArraySchema().WithItems(labelSchema),
					})),
			},
			"ErrorResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Response when an error occurs.").
					WithContent(openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/ErrorResponse"})),
			},
		},
	}

	idParam := &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("id").
			WithRequired(true).
			WithSchema(openapi3.NewInt64Schema()),
	}

	swagger.Paths = openapi3.Paths{
		"/tasks": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("status").WithSchema(openapi3.NewStringSchema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("priority").WithSchema(openapi3.NewStringSchema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("label").WithSchema(openapi3.NewInt64Schema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("search").WithSchema(openapi3.NewStringSchema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("sort").WithSchema(openapi3.NewStringSchema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("order").WithSchema(openapi3.NewStringSchema().WithEnum("asc", "desc"))},
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateTasksRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/{id}": &openapi3.PathItem{
			Parameters: openapi3.Parameters{idParam},
			Get: &openapi3.Operation{
				OperationID: "ReadTask",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateTask",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/UpdateTasksRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Responses: openapi3.Responses{
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Task deleted."),
					},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/labels": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListLabels",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/LabelsResponse"},
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateLabel",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateLabelsRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/LabelResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"409": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/labels/{id}": &openapi3.PathItem{
			Parameters: openapi3.Parameters{idParam},
			Get: &openapi3.Operation{
				OperationID: "ReadLabel",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/LabelResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateLabel",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/UpdateLabelsRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/LabelResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"409": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteLabel",
				Responses: openapi3.Responses{
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Label deleted."),
					},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/labels/{id}/tasks": &openapi3.PathItem{
			Parameters: openapi3.Parameters{idParam},
			Get: &openapi3.Operation{
				OperationID: "ListTasksForLabel",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
	}

	return swagger
}

// RegisterOpenAPI mounts the OpenAPI specification in JSON and YAML flavors.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, _ *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, _ *http.Request) {
		data, err := swagger.MarshalJSON()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		res, err := yaml.JSONToYAML(data)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)

		_, _ = w.Write(res)
	})
}
