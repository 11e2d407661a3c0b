// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the command API over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/absmach/registry/host"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/registry"
	"github.com/absmach/registry/things"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentType = "application/json"

// MakeHandler returns the HTTP handler serving the command endpoint and the
// metrics endpoint.
func MakeHandler(svc host.Service, logger *slog.Logger, instanceID string) http.Handler {
	r := chi.NewRouter()

	r.Post("/things/{thingID}/commands", commandHandler(svc, logger))
	r.Get("/health", healthHandler(instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// commandEnvelope is the wire form of a command. Only the fields relevant to
// the envelope's kind are read.
type commandEnvelope struct {
	Kind    string `json:"kind"`
	Headers struct {
		IfMatch       []string `json:"ifMatch,omitempty"`
		IfNoneMatch   []string `json:"ifNoneMatch,omitempty"`
		CorrelationID string   `json:"correlationId,omitempty"`
		Fields        []string `json:"fields,omitempty"`
		Version       int      `json:"version,omitempty"`
		AuthSubjects  []string `json:"authSubjects,omitempty"`
	} `json:"headers"`

	Thing       json.RawMessage           `json:"thing,omitempty"`
	Patch       json.RawMessage           `json:"patch,omitempty"`
	Pointer     string                    `json:"pointer,omitempty"`
	FeatureID   string                    `json:"featureId,omitempty"`
	Subject     string                    `json:"subject,omitempty"`
	Value       any                       `json:"value,omitempty"`
	Attributes  map[string]any            `json:"attributes,omitempty"`
	Features    map[string]things.Feature `json:"features,omitempty"`
	Properties  map[string]any            `json:"properties,omitempty"`
	Definition  json.RawMessage           `json:"definition,omitempty"`
	PolicyID    string                    `json:"policyId,omitempty"`
	ACL         things.ACL                `json:"acl,omitempty"`
	Permissions things.Permissions        `json:"permissions,omitempty"`
}

func commandHandler(svc host.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thingID := chi.URLParam(r, "thingID")

		var env commandEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			encodeError(w, errors.Wrap(registry.ErrInvalid, err))
			return
		}

		cmd, err := toCommand(thingID, env)
		if err != nil {
			encodeError(w, err)
			return
		}

		response, err := svc.Handle(r.Context(), cmd)
		if err != nil {
			encodeError(w, err)
			return
		}

		encodeResponse(w, cmd, response, logger)
	}
}

func healthHandler(instanceID string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":      "pass",
			"instance_id": instanceID,
		})
	}
}

func toCommand(thingID string, env commandEnvelope) (registry.Command, error) {
	headers := registry.Headers{
		IfMatch:       env.Headers.IfMatch,
		IfNoneMatch:   env.Headers.IfNoneMatch,
		CorrelationID: env.Headers.CorrelationID,
		Fields:        env.Headers.Fields,
		Version:       things.SchemaVersion(env.Headers.Version),
		AuthSubjects:  env.Headers.AuthSubjects,
	}
	base := registry.NewBase(thingID, headers)

	switch registry.Kind(env.Kind) {
	case registry.KindCreateThing, registry.KindModifyThing:
		var th things.Thing
		if len(env.Thing) > 0 {
			decoded, err := things.FromJSON(env.Thing)
			if err != nil {
				return nil, errors.Wrap(registry.ErrInvalid, err)
			}
			th = decoded
		}
		if registry.Kind(env.Kind) == registry.KindCreateThing {
			return registry.CreateThing{Base: base, Thing: th}, nil
		}
		return registry.ModifyThing{Base: base, Thing: th}, nil
	case registry.KindMergeThing:
		return registry.MergeThing{Base: base, Pointer: env.Pointer, Patch: env.Patch}, nil
	case registry.KindDeleteThing:
		return registry.DeleteThing{Base: base}, nil
	case registry.KindRetrieveThing:
		return registry.RetrieveThing{Base: base}, nil

	case registry.KindModifyAttributes:
		return registry.ModifyAttributes{Base: base, Attributes: env.Attributes}, nil
	case registry.KindDeleteAttributes:
		return registry.DeleteAttributes{Base: base}, nil
	case registry.KindRetrieveAttributes:
		return registry.RetrieveAttributes{Base: base}, nil
	case registry.KindModifyAttribute:
		return registry.ModifyAttribute{Base: base, Pointer: env.Pointer, Value: env.Value}, nil
	case registry.KindDeleteAttribute:
		return registry.DeleteAttribute{Base: base, Pointer: env.Pointer}, nil
	case registry.KindRetrieveAttribute:
		return registry.RetrieveAttribute{Base: base, Pointer: env.Pointer}, nil

	case registry.KindModifyFeatures:
		return registry.ModifyFeatures{Base: base, Features: env.Features}, nil
	case registry.KindDeleteFeatures:
		return registry.DeleteFeatures{Base: base}, nil
	case registry.KindRetrieveFeatures:
		return registry.RetrieveFeatures{Base: base}, nil
	case registry.KindModifyFeature:
		var f things.Feature
		if err := remarshal(env.Value, &f); err != nil {
			return nil, errors.Wrap(registry.ErrInvalid, err)
		}
		return registry.ModifyFeature{Base: base, FeatureID: env.FeatureID, Feature: f}, nil
	case registry.KindDeleteFeature:
		return registry.DeleteFeature{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindRetrieveFeature:
		return registry.RetrieveFeature{Base: base, FeatureID: env.FeatureID}, nil

	case registry.KindModifyProperties:
		return registry.ModifyProperties{Base: base, FeatureID: env.FeatureID, Properties: env.Properties}, nil
	case registry.KindDeleteProperties:
		return registry.DeleteProperties{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindRetrieveProperties:
		return registry.RetrieveProperties{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindModifyProperty:
		return registry.ModifyProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer, Value: env.Value}, nil
	case registry.KindDeleteProperty:
		return registry.DeleteProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer}, nil
	case registry.KindRetrieveProperty:
		return registry.RetrieveProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer}, nil

	case registry.KindModifyDesiredProperties:
		return registry.ModifyDesiredProperties{Base: base, FeatureID: env.FeatureID, Properties: env.Properties}, nil
	case registry.KindDeleteDesiredProperties:
		return registry.DeleteDesiredProperties{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindRetrieveDesiredProperties:
		return registry.RetrieveDesiredProperties{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindModifyDesiredProperty:
		return registry.ModifyDesiredProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer, Value: env.Value}, nil
	case registry.KindDeleteDesiredProperty:
		return registry.DeleteDesiredProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer}, nil
	case registry.KindRetrieveDesiredProperty:
		return registry.RetrieveDesiredProperty{Base: base, FeatureID: env.FeatureID, Pointer: env.Pointer}, nil

	case registry.KindModifyFeatureDefinition:
		var def []string
		if err := json.Unmarshal(env.Definition, &def); err != nil {
			return nil, errors.Wrap(registry.ErrInvalid, err)
		}
		return registry.ModifyFeatureDefinition{Base: base, FeatureID: env.FeatureID, Definition: def}, nil
	case registry.KindDeleteFeatureDefinition:
		return registry.DeleteFeatureDefinition{Base: base, FeatureID: env.FeatureID}, nil
	case registry.KindRetrieveFeatureDefinition:
		return registry.RetrieveFeatureDefinition{Base: base, FeatureID: env.FeatureID}, nil

	case registry.KindModifyDefinition:
		var def string
		if err := json.Unmarshal(env.Definition, &def); err != nil {
			return nil, errors.Wrap(registry.ErrInvalid, err)
		}
		return registry.ModifyDefinition{Base: base, Definition: def}, nil
	case registry.KindDeleteDefinition:
		return registry.DeleteDefinition{Base: base}, nil
	case registry.KindRetrieveDefinition:
		return registry.RetrieveDefinition{Base: base}, nil

	case registry.KindModifyPolicyID:
		return registry.ModifyPolicyID{Base: base, PolicyID: env.PolicyID}, nil
	case registry.KindRetrievePolicyID:
		return registry.RetrievePolicyID{Base: base}, nil

	case registry.KindModifyACL:
		return registry.ModifyACL{Base: base, ACL: env.ACL}, nil
	case registry.KindRetrieveACL:
		return registry.RetrieveACL{Base: base}, nil
	case registry.KindModifyACLEntry:
		return registry.ModifyACLEntry{Base: base, Subject: env.Subject, Permissions: env.Permissions}, nil
	case registry.KindDeleteACLEntry:
		return registry.DeleteACLEntry{Base: base, Subject: env.Subject}, nil
	case registry.KindRetrieveACLEntry:
		return registry.RetrieveACLEntry{Base: base, Subject: env.Subject}, nil

	default:
		return nil, errors.Wrap(registry.ErrInvalid, errors.New("unknown command kind "+env.Kind))
	}
}

func remarshal(value, target any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, target)
}

func encodeResponse(w http.ResponseWriter, cmd registry.Command, response registry.Response, logger *slog.Logger) {
	w.Header().Set("Content-Type", contentType)
	if !response.ETag.Empty() {
		w.Header().Set("ETag", response.ETag.String())
	}

	status := http.StatusOK
	if response.Status == registry.StatusCreated {
		status = http.StatusCreated
	}
	w.WriteHeader(status)

	body := map[string]any{
		"status": string(response.Status),
	}
	if response.Value != nil {
		body["value"] = response.Value
	}
	if response.CorrelationID != "" {
		body["correlationId"] = response.CorrelationID
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response", slog.String("kind", string(cmd.Kind())), slog.Any("error", err))
	}
}

func encodeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Contains(err, registry.ErrPreconditionNotModified):
		status = http.StatusNotModified
	case errors.Contains(err, registry.ErrPreconditionFailed):
		status = http.StatusPreconditionFailed
	case errors.Contains(err, registry.ErrNotAccessible),
		errors.Contains(err, registry.ErrNotApplicable):
		status = http.StatusNotFound
	case errors.Contains(err, registry.ErrConflict):
		status = http.StatusConflict
	case errors.Contains(err, registry.ErrSizeLimitExceeded):
		status = http.StatusRequestEntityTooLarge
	case errors.Contains(err, registry.ErrSchemaNotSupported),
		errors.Contains(err, registry.ErrPolicyIDMissing),
		errors.Contains(err, registry.ErrACLNotAllowed),
		errors.Contains(err, registry.ErrInvalid):
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
