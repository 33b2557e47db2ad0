package mysql

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, hotel_id, hotel_name, hotel_image, hotel_city, hotel_country,
   guest_name, guest_email, guest_phone, check_in, check_out, guests,
   total_price, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateBookingStatusSQL = `
UPDATE bookings SET status = ? WHERE id = ?
`

// Reschedule touches dates and guest count only: total_price and guest
// contact fields keep the values captured at creation.
const updateBookingStaySQL = `
UPDATE bookings SET check_in = ?, check_out = ?, guests = ? WHERE id = ?
`

const getBookingSQL = `
SELECT id, user_id, hotel_id, hotel_name, hotel_image, hotel_city, hotel_country,
       guest_name, guest_email, guest_phone, check_in, check_out, guests,
       total_price, status, created_at
FROM bookings
WHERE id = ?
`

// Newest first; aligns with the index on (user_id, created_at).
const listBookingsByUserSQL = `
SELECT id, user_id, hotel_id, hotel_name, hotel_image, hotel_city, hotel_country,
       guest_name, guest_email, guest_phone, check_in, check_out, guests,
       total_price, status, created_at
FROM bookings
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

// -----------------------------------------------------------------------------
// USERS / PROFILES / SESSIONS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
`

const insertProfileSQL = `
INSERT INTO profiles (user_id, full_name, email, phone) VALUES (?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, email, password_hash, created_at FROM users WHERE email = ?
`

const getUserByIDSQL = `
SELECT id, email, password_hash, created_at FROM users WHERE id = ?
`

const getProfileSQL = `
SELECT user_id, full_name, email, phone FROM profiles WHERE user_id = ?
`

// Email is immutable once set at signup; only name and phone are editable.
const updateProfileSQL = `
UPDATE profiles SET full_name = ?, phone = ? WHERE user_id = ?
`

const insertSessionSQL = `
INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)
`

const getSessionSQL = `
SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?
`

const deleteSessionSQL = `
DELETE FROM sessions WHERE token = ?
`
