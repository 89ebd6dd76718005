package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/cubie-app/chat/internal/models"
)

// APIError is a non-2xx response from the persistence API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// APIClient talks to the group/message persistence contract over HTTP.
type APIClient struct {
	baseURL string
	token   string
	http    *fasthttp.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		http: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (c *APIClient) do(method, path string, body interface{}, out interface{}) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	if err := c.http.Do(req, resp); err != nil {
		return err
	}

	if resp.StatusCode() >= 400 {
		apiErr := &APIError{Status: resp.StatusCode()}
		var parsed struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(resp.Body(), &parsed) == nil {
			apiErr.Code = parsed.Code
			apiErr.Message = parsed.Error
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(resp.Body(), out)
	}
	return nil
}

// Groups fetches the caller's group directory.
func (c *APIClient) Groups() ([]models.GroupResponse, error) {
	var groups []models.GroupResponse
	if err := c.do(fasthttp.MethodGet, "/api/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

type memberRef struct {
	User uint `json:"user"`
}

type createGroupRequest struct {
	Name    string      `json:"name"`
	Members []memberRef `json:"members"`
}

type addMembersRequest struct {
	Members []memberRef `json:"members"`
}

func memberRefs(memberIDs []uint) []memberRef {
	refs := make([]memberRef, len(memberIDs))
	for i, id := range memberIDs {
		refs[i] = memberRef{User: id}
	}
	return refs
}

func (c *APIClient) CreateGroup(name string, memberIDs []uint) (*models.GroupResponse, error) {
	var group models.GroupResponse
	req := createGroupRequest{Name: name, Members: memberRefs(memberIDs)}
	if err := c.do(fasthttp.MethodPost, "/api/groups", req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *APIClient) AddMembers(groupID uint, memberIDs []uint) (*models.GroupResponse, error) {
	var group models.GroupResponse
	req := addMembersRequest{Members: memberRefs(memberIDs)}
	path := fmt.Sprintf("/api/groups/%d/members", groupID)
	if err := c.do(fasthttp.MethodPost, path, req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *APIClient) RemoveMember(groupID, memberID uint) (*models.GroupResponse, error) {
	var group models.GroupResponse
	path := fmt.Sprintf("/api/groups/%d/members/%d", groupID, memberID)
	if err := c.do(fasthttp.MethodDelete, path, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GroupMessages fetches one page of history. Page 1 is the most recent.
func (c *APIClient) GroupMessages(groupID uint, page, limit int) (*models.MessagePage, error) {
	var result models.MessagePage
	path := fmt.Sprintf("/api/messages/group/%d?page=%d&limit=%d", groupID, page, limit)
	if err := c.do(fasthttp.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
