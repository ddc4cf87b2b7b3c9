package shoppinglists

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/api/validators"
	internallists "github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

// lineIDs reads the {listId} and {itemId} path parameters.
func lineIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	id, err := listID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := validators.ParseUUIDParam(r, "itemId")
	return id, itemID, err
}

func ListItems(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		items, err := svc.ListItems(r.Context(), id)
		if err != nil {
			return result{}, err
		}
		return ok(items)
	})
}

// AddItem appends a line; the cheapest current offer is preselected.
func AddItem(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, err := listID(r)
		if err != nil {
			return result{}, err
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return result{}, err
		}
		input, err := payload.toInput()
		if err != nil {
			return result{}, err
		}
		item, err := svc.AddItem(r.Context(), id, input)
		if err != nil {
			return result{}, err
		}
		return created(item)
	})
}

func UpdateItem(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, itemID, err := lineIDs(r)
		if err != nil {
			return result{}, err
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return result{}, err
		}
		input, err := payload.toInput()
		if err != nil {
			return result{}, err
		}
		item, err := svc.UpdateItem(r.Context(), id, itemID, input)
		if err != nil {
			return result{}, err
		}
		return ok(item)
	})
}

func RemoveItem(svc internallists.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (result, error) {
		id, itemID, err := lineIDs(r)
		if err != nil {
			return result{}, err
		}
		if err := svc.RemoveItem(r.Context(), id, itemID); err != nil {
			return result{}, err
		}
		return noContent()
	})
}
