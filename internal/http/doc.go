// Package http provides HTTP handlers and middleware for the reservation API.
//
// The router exposes the following endpoints:
//   - POST /study-groups/{groupID}/rooms/{roomID}/reservations: books a room for
//     a study group. Body: {"startTime","endTime"} using the
//     `yyyy-MM-dd HH:mm:ss` layout in UTC. Responds 201 with the `reservationDTO`
//     payload defined in reservation_handler.go; overlapping ranges yield 409
//     with error_code RESERVATION_CONFLICT.
//   - GET /rooms/{roomID}/reservations: lists a room's reservations, optionally
//     restricted to the half-open window given by the startTime and endTime
//     query parameters.
//   - GET /rooms/{roomID}/reservations/{reservationID}: returns one reservation.
//     The id must belong to the room in the path.
//   - PUT /rooms/{roomID}/reservations/{reservationID}: replaces a reservation.
//     Responds with the replacement's id, which changes whenever the start time
//     does.
//   - DELETE /reservations/{reservationID}: removes a reservation. Responds 204,
//     or 404 when the id does not exist.
//   - GET /rooms, GET /rooms/{id}, GET /study-groups: read-only catalog views.
//   - POST /users: registers an account. GET /users/{id} returns the public
//     profile and GET /users/{id}/reservations returns the reservations of the
//     user's study groups.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
