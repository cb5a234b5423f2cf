// Package models defines the core domain models for the form builder.
//
// # Models
//
//   - User: registered account; admins manage other users
//   - Form: a titled form definition owning a field tree (fieldtree.Structure)
//   - FormField: one described field of a form (name, type, item type, nested fields)
//   - Preset: a named, reusable pre-fill document for a form
//   - FormResponse: one submitted response document for a form
//   - FieldComment: a user's note on a single field of a form
//   - RevokedToken: a refresh token invalidated by logout
//
// # Design Principles
//
//  1. Relationships are expressed as int64 IDs, not pointers.
//  2. Timestamps are Unix seconds, set by the store when zero.
//  3. Response and preset documents are kept as raw JSON so member order
//     survives storage untouched.
//  4. Form-dependent rows (fields, presets, responses, comments) never
//     outlive their form.
package models
