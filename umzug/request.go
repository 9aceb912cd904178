package umzug

import (
	"maps"
	"strconv"

	"github.com/google/uuid"
)

// Method is the HTTP method of a Request
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Request describes a single API call. Construct it with the factory
// functions below; the zero value is not a valid request.
type Request struct {
	Method Method
	Path   []string
	Query  map[string]string
}

func newRequest(method Method, query map[string]string, path ...string) Request {
	if query == nil {
		query = map[string]string{}
	}
	return Request{Method: method, Path: path, Query: query}
}

// Clone returns a deep copy of the request
func (r Request) Clone() Request {
	return Request{
		Method: r.Method,
		Path:   append([]string(nil), r.Path...),
		Query:  maps.Clone(r.Query),
	}
}

// ListBoxes lists all boxes
func ListBoxes() Request {
	return newRequest(MethodGet, nil, "boxes")
}

// CreateBox creates a box with the given title
func CreateBox(title string) Request {
	return newRequest(MethodPost, map[string]string{"title": title}, "boxes")
}

// UpdateBox renames a box
func UpdateBox(id uuid.UUID, title string) Request {
	return newRequest(MethodPatch, map[string]string{"title": title}, "boxes", id.String())
}

// DeleteBox deletes a box
func DeleteBox(id uuid.UUID) Request {
	return newRequest(MethodDelete, nil, "boxes", id.String())
}

// ListItems lists all items
func ListItems() Request {
	return newRequest(MethodGet, nil, "items")
}

// CreateItem creates an item. An empty priority is omitted.
func CreateItem(title string, priority Priority) Request {
	query := map[string]string{"title": title}
	if priority != "" {
		query["priority"] = string(priority)
	}
	return newRequest(MethodPost, query, "items")
}

// UpdateItem changes the title and/or priority of an item. Nil fields are left untouched.
func UpdateItem(id uuid.UUID, title *string, priority *Priority) Request {
	query := map[string]string{}
	if title != nil {
		query["title"] = *title
	}
	if priority != nil {
		query["priority"] = string(*priority)
	}
	return newRequest(MethodPatch, query, "items", id.String())
}

// DeleteItem deletes an item
func DeleteItem(id uuid.UUID) Request {
	return newRequest(MethodDelete, nil, "items", id.String())
}

// ListPackings lists packings, optionally restricted to an item and/or a box
func ListPackings(item, box *uuid.UUID) Request {
	query := map[string]string{}
	if item != nil {
		query["itemID"] = item.String()
	}
	if box != nil {
		query["boxID"] = box.String()
	}
	return newRequest(MethodGet, query, "packings")
}

// CreatePacking packs amount of item into box
func CreatePacking(item, box uuid.UUID, amount int) Request {
	return newRequest(MethodPost, map[string]string{
		"itemID": item.String(),
		"boxID":  box.String(),
		"amount": strconv.Itoa(amount),
	}, "packings")
}

// UpdatePacking modifies a packing. Nil fields are left untouched.
func UpdatePacking(id uuid.UUID, item, box *uuid.UUID, amount *int) Request {
	query := map[string]string{}
	if item != nil {
		query["itemID"] = item.String()
	}
	if box != nil {
		query["boxID"] = box.String()
	}
	if amount != nil {
		query["amount"] = strconv.Itoa(*amount)
	}
	return newRequest(MethodPatch, query, "packings", id.String())
}

// DeletePacking deletes a packing
func DeletePacking(id uuid.UUID) Request {
	return newRequest(MethodDelete, nil, "packings", id.String())
}
