package types

import "encoding/json"

// FleetControl GraphQL API structures
type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// groups { result { ... } }
type ResourceGroup struct {
	Name              string             `json:"name"`
	ResourceSelectors []ResourceSelector `json:"resourceSelectors"`
}

type ResourceSelector struct {
	Resource *Resource `json:"resource"`
}

type Resource struct {
	Name  string       `json:"name"`
	State *StatusState `json:"state"`
}

type StatusState struct {
	Status string `json:"status"`
}

// incomingEvents { result { ... } }
type IncomingEvent struct {
	Name             *string `json:"name"`
	StartTime        string  `json:"startTime"`
	ScheduleTimezone *string `json:"scheduleTimezone"`
	Plan             *Plan   `json:"plan"`
	EstimatedEndTime string  `json:"estimatedEndTime"`
	Status           string  `json:"status"`
}

type Plan struct {
	PlanActions []PlanAction `json:"planActions"`
}

type PlanAction struct {
	Name           string              `json:"name"`
	ResourceGroups []PlanResourceGroup `json:"resourceGroups"`
}

type PlanResourceGroup struct {
	TotalNumberOfResources int `json:"totalNumberOfResources"`
}

// events { result { ... } }
type Event struct {
	Name      string   `json:"name"`
	StartTime string   `json:"startTime"`
	Status    string   `json:"status"`
	Actions   []Action `json:"actions"`
}

type Action struct {
	ActionName  string       `json:"actionName"`
	Type        string       `json:"type"`
	GlobalState *StatusState `json:"globalState"`
	Attempts    []Attempt    `json:"attempts"`
}

type Attempt struct {
	Attempt        int             `json:"attempt"`
	State          *StatusState    `json:"state"`
	ResourceStates []ResourceState `json:"resourceStates"`
}

type ResourceState struct {
	ResourceID string       `json:"resourceId"`
	Status     string       `json:"status"`
	Annotation string       `json:"annotation"`
	Resource   *ResourceRef `json:"resource"`
}

type ResourceRef struct {
	Name                string `json:"name"`
	Provider            string `json:"provider"`
	FullCloudResourceID string `json:"fullCloudResourceId"`
}
