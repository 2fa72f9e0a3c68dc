// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package graphql is the delivery layer of the accounts API.

It exposes the credential workflow over a single POST /graphql endpoint. The
schema is hand-authored SDL executed by graph-gophers; there is no code
generation step.

# Envelope Contract

Mutations that act on credentials resolve to a UserResponse envelope: expected
failures (validation, wrong password, expired token) travel in the errors list
as field/message pairs, while unexpected failures surface as transport-level
GraphQL errors.
*/
package graphql

import (
	graphqlgo "github.com/graph-gophers/graphql-go"
)

// SchemaSDL defines the public shape of the accounts API.
const SchemaSDL = `
	schema {
		query: Query
		mutation: Mutation
	}

	type Query {
		me: User
	}

	type Mutation {
		register(options: UsernamePasswordInput!): UserResponse!
		login(usernameOrEmail: String!, password: String!): UserResponse!
		logout: Boolean!
		forgotPassword(email: String!): Boolean!
		changePassword(token: String!, newPassword: String!): UserResponse!
	}

	type User {
		id: ID!
		username: String!
		email: String!
		createdAt: String!
		updatedAt: String!
	}

	type FieldError {
		field: String!
		message: String!
	}

	type UserResponse {
		errors: [FieldError!]
		user: User
	}

	input UsernamePasswordInput {
		username: String!
		email: String!
		password: String!
	}
`

// NewSchema parses the SDL against the root resolver. Panics on a schema /
// resolver mismatch, which is a programming error caught at startup.
func NewSchema(service AccountService) *graphqlgo.Schema {
	return graphqlgo.MustParseSchema(SchemaSDL, NewRootResolver(service))
}
