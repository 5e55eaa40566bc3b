package server

import (
	"net/http"
	"strconv"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	limit := queryInt(r, "limit")
	lists, err := s.mgr.ListAll(r.Context(), includeArchived, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListKey     string         `json:"list_key"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	list, err := s.mgr.CreateList(r.Context(), body.ListKey, body.Title, manager.CreateListOptions{
		Description: body.Description,
		Metadata:    body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.mgr.GetList(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	list, err := s.mgr.UpdateList(r.Context(), r.PathValue("key"), manager.UpdateListRequest{
		Title:       body.Title,
		Description: body.Description,
		Metadata:    body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := s.mgr.DeleteList(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"list_key": key})
}

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	var status *types.ItemStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := types.ItemStatus(raw)
		status = &st
	}
	items, err := s.mgr.GetListItems(r.Context(), r.PathValue("key"), status, queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemKey  string         `json:"item_key"`
		Content  string         `json:"content"`
		Parent   string         `json:"parent"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	item, err := s.mgr.AddItem(r.Context(), r.PathValue("key"), body.ItemKey, body.Content, manager.AddItemOptions{
		Parent:   body.Parent,
		Metadata: body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.mgr.GetItem(r.Context(), r.PathValue("key"), r.PathValue("item"), r.URL.Query().Get("parent"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
		Parent  string `json:"parent"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	item, err := s.mgr.UpdateItemContent(r.Context(), r.PathValue("key"), r.PathValue("item"), body.Content, body.Parent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemKey := r.PathValue("item")
	err := s.mgr.DeleteItem(r.Context(), r.PathValue("key"), itemKey, r.URL.Query().Get("parent"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"item_key": itemKey})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status *string        `json:"status"`
		States map[string]any `json:"states"`
		Parent string         `json:"parent"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	update := manager.StatusUpdate{States: body.States, Parent: body.Parent}
	if body.Status != nil {
		st := types.ItemStatus(*body.Status)
		update.Status = &st
	}
	item, err := s.mgr.UpdateItemStatus(r.Context(), r.PathValue("key"), r.PathValue("item"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleNextPending(w http.ResponseWriter, r *http.Request) {
	smart := r.URL.Query().Get("smart") != "false"
	item, err := s.mgr.GetNextPending(r.Context(), r.PathValue("key"), smart)
	if err != nil {
		writeError(w, err)
		return
	}
	// item is nil when nothing is startable; data is null in that case.
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.mgr.GetProgress(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, progress)
}

func (s *Server) handleGetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.mgr.ListTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	tag, err := s.mgr.CreateTag(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, tag)
}

// depBody addresses a dependency edge by its two endpoints
type depBody struct {
	Dependent refBody        `json:"dependent"`
	Required  refBody        `json:"required"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata"`
}

type refBody struct {
	List string `json:"list"`
	Item string `json:"item"`
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	var body depBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	dep, err := s.mgr.AddItemDependency(r.Context(),
		manager.ItemRef{ListKey: body.Dependent.List, ItemKey: body.Dependent.Item},
		manager.ItemRef{ListKey: body.Required.List, ItemKey: body.Required.Item},
		types.DependencyType(body.Type), body.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, dep)
}

func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	var body depBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	err := s.mgr.RemoveItemDependency(r.Context(),
		manager.ItemRef{ListKey: body.Dependent.List, ItemKey: body.Dependent.Item},
		manager.ItemRef{ListKey: body.Required.List, ItemKey: body.Required.Item})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
