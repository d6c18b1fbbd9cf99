// Package api maps REST requests under /api onto storage operations and
// renders the results as JSON.
package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// apiPrefix is the first path segment of every API request. Other paths are
// handed to the static file handler.
const apiPrefix = "api"

const idSegment = "{id}"

type action int

const (
	listCustomers action = iota + 1
	getCustomer
	listCustomerProjects
	listProjects
	getProject
	listProjectTasks
	listTasks
	getTask
	createCustomer
	createProject
	createTask
	updateCustomer
	updateProject
	updateTask
	deleteCustomer
	deleteProject
	deleteTask
)

var actionNames = map[action]string{
	listCustomers:        "list_customers",
	getCustomer:          "get_customer",
	listCustomerProjects: "list_customer_projects",
	listProjects:         "list_projects",
	getProject:           "get_project",
	listProjectTasks:     "list_project_tasks",
	listTasks:            "list_tasks",
	getTask:              "get_task",
	createCustomer:       "create_customer",
	createProject:        "create_project",
	createTask:           "create_task",
	updateCustomer:       "update_customer",
	updateProject:        "update_project",
	updateTask:           "update_task",
	deleteCustomer:       "delete_customer",
	deleteProject:        "delete_project",
	deleteTask:           "delete_task",
}

func (a action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// readsBody reports whether the action consumes a JSON field set.
func (a action) readsBody() bool {
	switch a {
	case createCustomer, createProject, createTask, updateCustomer, updateProject, updateTask:
		return true
	}
	return false
}

// routeTable lists every API route. Patterns are relative to /api.
var routeTable = []struct {
	method  string
	pattern string
	action  action
}{
	{http.MethodGet, "customers", listCustomers},
	{http.MethodGet, "customers/{id}", getCustomer},
	{http.MethodGet, "customers/{id}/projects", listCustomerProjects},
	{http.MethodGet, "projects", listProjects},
	{http.MethodGet, "projects/{id}", getProject},
	{http.MethodGet, "projects/{id}/tasks", listProjectTasks},
	{http.MethodGet, "tasks", listTasks},
	{http.MethodGet, "tasks/{id}", getTask},
	{http.MethodPost, "customers", createCustomer},
	{http.MethodPost, "projects", createProject},
	{http.MethodPost, "projects/{id}/tasks", createTask},
	{http.MethodPut, "customers/{id}", updateCustomer},
	{http.MethodPut, "projects/{id}", updateProject},
	{http.MethodPut, "tasks/{id}", updateTask},
	{http.MethodDelete, "customers/{id}", deleteCustomer},
	{http.MethodDelete, "projects/{id}", deleteProject},
	{http.MethodDelete, "tasks/{id}", deleteTask},
}

type route struct {
	method   string
	pattern  string
	segments []string
	action   action
}

// intent is a resolved request: what to do and on which id.
type intent struct {
	action action
	id     int64
	// status is the optional equality filter of GET /api/tasks.
	status string
}

// router is the compiled route table. Routes are tried in order.
type router struct {
	routes []route
}

func newRouter() *router {
	rt := &router{routes: make([]route, 0, len(routeTable))}
	for _, r := range routeTable {
		rt.routes = append(rt.routes, route{
			method:   r.method,
			pattern:  r.pattern,
			segments: strings.Split(r.pattern, "/"),
			action:   r.action,
		})
	}
	return rt
}

// resolve matches method and the path segments after the API prefix.
// Matching is exact on segment count and literals; {id} only matches
// non-negative integers.
func (rt *router) resolve(method string, segments []string, query url.Values) (intent, bool) {
	_, it, ok := rt.lookup(method, segments)
	if !ok {
		return intent{}, false
	}
	if it.action == listTasks {
		it.status = query.Get("status")
	}
	return it, true
}

func (rt *router) lookup(method string, segments []string) (route, intent, bool) {
	for _, r := range rt.routes {
		if r.method != method || len(r.segments) != len(segments) {
			continue
		}
		if it, ok := r.match(segments); ok {
			return r, it, true
		}
	}
	return route{}, intent{}, false
}

func (r route) match(segments []string) (intent, bool) {
	it := intent{action: r.action}
	for i, want := range r.segments {
		if want != idSegment {
			if segments[i] != want {
				return intent{}, false
			}
			continue
		}
		id, ok := parseID(segments[i])
		if !ok {
			return intent{}, false
		}
		it.id = id
	}
	return it, true
}

// parseID accepts only all-digit strings that fit in an int64.
func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// splitPath returns the non-empty segments of an URL path.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// IsAPIPath reports whether p belongs to the API rather than to the static
// frontend.
func IsAPIPath(p string) bool {
	segments := splitPath(p)
	return len(segments) > 0 && segments[0] == apiPrefix
}

// Route labels for paths that do not resolve to an API route.
const (
	LabelStatic  = "static"
	LabelInvalid = "invalid"
)

var labelRouter = newRouter()

// RouteLabel names the route a request resolves to, e.g.
// "/api/projects/{id}/tasks". API paths matching no route share
// LabelInvalid and every other path is LabelStatic, so the result set is
// bounded by the route table.
func RouteLabel(method, p string) string {
	segments := splitPath(p)
	if len(segments) == 0 || segments[0] != apiPrefix {
		return LabelStatic
	}
	r, _, ok := labelRouter.lookup(method, segments[1:])
	if !ok {
		return LabelInvalid
	}
	return "/" + apiPrefix + "/" + r.pattern
}
